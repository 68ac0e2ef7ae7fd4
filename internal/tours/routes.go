package tours

import (
	"net/http"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
	"wayfarer/internal/models"
)

// RegisterRoutes mounts the tour resource under api (expected /api/v1).
func RegisterRoutes(api *mux.Router, h *Handler, g *auth.Guard) {
	pub := api.PathPrefix("/tours").Subrouter()
	pub.HandleFunc("/top-5-cheap", h.TopCheap).Methods(http.MethodGet)
	pub.HandleFunc("/tour-stats", h.Stats).Methods(http.MethodGet)
	pub.HandleFunc("/tours-within/{distance}/center/{latlng}/unit/{unit}", h.Within).Methods(http.MethodGet)
	pub.HandleFunc("/distances/{latlng}/unit/{unit}", h.Distances).Methods(http.MethodGet)
	pub.HandleFunc("", h.List).Methods(http.MethodGet)
	pub.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)

	plan := api.PathPrefix("/tours").Subrouter()
	plan.Use(g.Protect, g.RestrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide))
	plan.HandleFunc("/monthly-plan/{year:[0-9]+}", h.MonthlyPlan).Methods(http.MethodGet)

	staff := api.PathPrefix("/tours").Subrouter()
	staff.Use(g.Protect, g.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
	staff.HandleFunc("", h.Create).Methods(http.MethodPost)
	staff.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
	staff.HandleFunc("/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

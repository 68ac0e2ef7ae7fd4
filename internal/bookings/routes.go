package bookings

import (
	"net/http"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
	"wayfarer/internal/models"
)

// RegisterRoutes mounts the booking API. Checkout is open to any signed-in
// user, the CRUD surface is for back office staff.
func RegisterRoutes(api *mux.Router, h *Handler, g *auth.Guard) {
	user := api.PathPrefix("/bookings").Subrouter()
	user.Use(g.Protect)
	user.HandleFunc("/checkout-session/{tourId:[0-9]+}", h.CheckoutSession).Methods(http.MethodGet)
	user.HandleFunc("/my-tours", h.MyTours).Methods(http.MethodGet)

	admin := api.PathPrefix("/bookings").Subrouter()
	admin.Use(g.Protect, g.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
	admin.HandleFunc("", h.List).Methods(http.MethodGet)
	admin.HandleFunc("", h.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

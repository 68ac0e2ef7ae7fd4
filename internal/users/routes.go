package users

import (
	"net/http"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
	"wayfarer/internal/models"
)

// RegisterRoutes mounts the credential lifecycle plus the user resource.
func RegisterRoutes(api *mux.Router, h *Handler, a *auth.Handlers, g *auth.Guard) {
	pub := api.PathPrefix("/users").Subrouter()
	pub.HandleFunc("/signup", a.Signup).Methods(http.MethodPost)
	pub.HandleFunc("/login", a.Login).Methods(http.MethodPost)
	pub.HandleFunc("/logout", a.Logout).Methods(http.MethodGet)
	pub.HandleFunc("/forgotPassword", a.ForgotPassword).Methods(http.MethodPost)
	pub.HandleFunc("/resetPassword/{token}", a.ResetPassword).Methods(http.MethodPatch)
	pub.HandleFunc("", h.Create).Methods(http.MethodPost)

	me := api.PathPrefix("/users").Subrouter()
	me.Use(g.Protect)
	me.HandleFunc("/updateMyPassword", a.UpdatePassword).Methods(http.MethodPatch)
	me.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	me.HandleFunc("/updateMe", h.UpdateMe).Methods(http.MethodPatch)
	me.HandleFunc("/deleteMe", h.DeleteMe).Methods(http.MethodDelete)

	admin := api.PathPrefix("/users").Subrouter()
	admin.Use(g.Protect, g.RestrictTo(models.RoleAdmin))
	admin.HandleFunc("", h.List).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

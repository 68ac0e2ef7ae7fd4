package views

import (
	"net/http"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
)

// RegisterRoutes mounts the server-rendered pages at the site root. checkout
// is the bookings middleware that records a paid booking when Stripe
// redirects back with its query parameters.
func RegisterRoutes(r *mux.Router, h *Handler, g *auth.Guard, checkout mux.MiddlewareFunc) {
	pub := r.NewRoute().Subrouter()
	pub.Use(g.IsLoggedIn)
	pub.Handle("/", checkout(http.HandlerFunc(h.Overview))).Methods(http.MethodGet)
	pub.HandleFunc("/tour/{slug}", h.TourDetail).Methods(http.MethodGet)
	pub.HandleFunc("/login", h.Login).Methods(http.MethodGet)

	priv := r.NewRoute().Subrouter()
	priv.Use(g.Protect)
	priv.HandleFunc("/me", h.Account).Methods(http.MethodGet)
	priv.HandleFunc("/my-tours", h.MyTours).Methods(http.MethodGet)

	r.HandleFunc("/static/style.css", serveCSS).Methods(http.MethodGet)
	r.HandleFunc("/static/app.js", serveJS).Methods(http.MethodGet)
}

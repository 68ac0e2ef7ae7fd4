package reviews

import (
	"net/http"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
	"wayfarer/internal/models"
)

// RegisterRoutes mounts /reviews and the nested /tours/{tourId}/reviews.
// Everything requires a login; only plain users may post reviews.
func RegisterRoutes(api *mux.Router, h *Handler, g *auth.Guard) {
	for _, prefix := range []string{"/reviews", "/tours/{tourId:[0-9]+}/reviews"} {
		read := api.PathPrefix(prefix).Subrouter()
		read.Use(g.Protect)
		read.HandleFunc("", h.List).Methods(http.MethodGet)
		read.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)

		post := api.PathPrefix(prefix).Subrouter()
		post.Use(g.Protect, g.RestrictTo(models.RoleUser))
		post.HandleFunc("", h.Create).Methods(http.MethodPost)

		edit := api.PathPrefix(prefix).Subrouter()
		edit.Use(g.Protect, g.RestrictTo(models.RoleUser, models.RoleAdmin))
		edit.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
		edit.HandleFunc("/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	}
}

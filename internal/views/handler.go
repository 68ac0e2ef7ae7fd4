package views

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"wayfarer/internal/auth"
	"wayfarer/internal/logs"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
	"wayfarer/internal/repo"
)

type Handler struct {
	tours    *repo.TourStore
	reviews  *repo.ReviewStore
	bookings *repo.BookingStore
	t        pageTemplates
}

func NewHandler(tours *repo.TourStore, reviews *repo.ReviewStore, bookings *repo.BookingStore) *Handler {
	return &Handler{tours: tours, reviews: reviews, bookings: bookings, t: parseTemplates()}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	t, ok := h.t[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}
	if _, exists := data["User"]; !exists {
		if user, ok := auth.CurrentUser(r); ok {
			data["User"] = user
		} else {
			data["User"] = (*models.User)(nil)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logs.Logger.Errorf("render %s: %v", page, err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, msg string) {
	h.render(w, r, "error.tmpl", map[string]any{"Title": "Error", "Message": msg})
}

// Overview is the landing page with every public tour.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	tours, err := h.tours.List(r.Context(), query.Parse(url.Values{}))
	if err != nil {
		h.renderError(w, r, "Could not load tours, please try again later.")
		return
	}
	h.render(w, r, "overview.tmpl", map[string]any{
		"Title": "All Tours",
		"Tours": tours,
	})
}

// TourDetail shows one tour with its itinerary, guides and reviews.
func (h *Handler) TourDetail(w http.ResponseWriter, r *http.Request) {
	tour, err := h.tours.BySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.renderError(w, r, "There is no tour with that name.")
		return
	}
	reviews, err := h.reviews.List(r.Context(), tour.ID, query.Parse(url.Values{}))
	if err != nil {
		h.renderError(w, r, "Could not load reviews, please try again later.")
		return
	}
	h.render(w, r, "tour.tmpl", map[string]any{
		"Title":   tour.Name + " Tour",
		"Tour":    tour,
		"Reviews": reviews,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.tmpl", map[string]any{"Title": "Log In"})
}

func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "account.tmpl", map[string]any{"Title": "Your Account"})
}

// MyTours lists the logged-in user's booked tours.
func (h *Handler) MyTours(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	rows, err := h.bookings.ByUser(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, "Could not load your bookings, please try again later.")
		return
	}
	h.render(w, r, "my_tours.tmpl", map[string]any{
		"Title":    "My Bookings",
		"Bookings": rows,
	})
}

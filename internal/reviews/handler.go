package reviews

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wayfarer/internal/apperr"
	"wayfarer/internal/auth"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
	"wayfarer/internal/repo"
)

type Handler struct {
	reviews *repo.ReviewStore
}

func New(reviews *repo.ReviewStore) *Handler {
	return &Handler{reviews: reviews}
}

type reviewRequest struct {
	Review string  `json:"review"`
	Rating float64 `json:"rating"`
	TourID uint    `json:"tourId"`
}

// List serves both /reviews and the nested /tours/{tourId}/reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tourID := nestedTourID(r)
	rows, err := h.reviews.List(r.Context(), tourID, query.Parse(r.URL.Query()))
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"reviews": rows},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	rv, err := h.reviews.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"review": rv})
}

// Create posts a review as the logged-in user. The tour aggregate is
// recomputed right after the write.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	if tourID := nestedTourID(r); tourID != 0 {
		req.TourID = tourID
	}
	if err := validate(req.Review, req.Rating, req.TourID); err != nil {
		models.WriteErr(w, err)
		return
	}

	rv := &models.Review{
		Body:   req.Review,
		Rating: req.Rating,
		TourID: req.TourID,
		UserID: user.ID,
	}
	if err := h.reviews.Create(r.Context(), rv); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.reviews.RecalcTourRatings(r.Context(), rv.TourID); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusCreated, map[string]any{"review": rv})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	rv, err := h.loadOwned(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Review != "" {
		rv.Body = req.Review
	}
	if req.Rating != 0 {
		rv.Rating = req.Rating
	}
	if err := validate(rv.Body, rv.Rating, rv.TourID); err != nil {
		models.WriteErr(w, err)
		return
	}

	if err := h.reviews.Update(r.Context(), rv); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.reviews.RecalcTourRatings(r.Context(), rv.TourID); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"review": rv})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rv, err := h.loadOwned(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), rv.ID); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.reviews.RecalcTourRatings(r.Context(), rv.TourID); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteNoContent(w)
}

// loadOwned fetches the review and checks that a plain user only touches
// their own; admins pass through.
func (h *Handler) loadOwned(r *http.Request) (*models.Review, error) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	rv, err := h.reviews.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin && rv.UserID != user.ID {
		return nil, apperr.ErrForbidden
	}
	return rv, nil
}

func validate(body string, rating float64, tourID uint) error {
	if body == "" {
		return apperr.Validation("review can not be empty")
	}
	if rating < 1 || rating > 5 {
		return apperr.Validation("rating must be between 1 and 5")
	}
	if tourID == 0 {
		return apperr.Validation("review must belong to a tour")
	}
	return nil
}

func nestedTourID(r *http.Request) uint {
	if raw, ok := mux.Vars(r)["tourId"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return uint(id)
		}
	}
	return 0
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id: %s", mux.Vars(r)["id"])
	}
	return uint(id), nil
}

package tours

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wayfarer/config"
	"wayfarer/internal/apperr"
	"wayfarer/internal/images"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
	"wayfarer/internal/repo"

	"gorm.io/datatypes"
)

type Handler struct {
	tours *repo.TourStore
	cfg   *config.Config
}

func New(tours *repo.TourStore, cfg *config.Config) *Handler {
	return &Handler{tours: tours, cfg: cfg}
}

// List is the composed read: ?duration=5&price[lt]=1000&sort=-price&fields=name,price&page=2&limit=10
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	d := query.Parse(r.URL.Query())
	rows, err := h.tours.List(r.Context(), d)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"tours": rows},
	})
}

// TopCheap is the alias route: the five best-rated cheapest tours.
func (h *Handler) TopCheap(w http.ResponseWriter, r *http.Request) {
	params := url.Values{}
	params.Set("limit", "5")
	params.Set("sort", "-ratingsAverage,price")
	params.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	rows, err := h.tours.List(r.Context(), query.Parse(params))
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"tours": rows},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	tour, err := h.tours.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"tour": tour})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var tour models.Tour
	if err := json.NewDecoder(r.Body).Decode(&tour); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	if err := validateTour(&tour); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.tours.Create(r.Context(), &tour); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusCreated, map[string]any{"tour": &tour})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	tour, err := h.tours.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := h.applyImageUploads(r, tour); err != nil {
			models.WriteErr(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(tour); err != nil {
		// decoding into the loaded struct keeps unmentioned fields as they are
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	tour.ID = id

	if err := validateTour(tour); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.tours.Update(r.Context(), tour); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"tour": tour})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.tours.Delete(r.Context(), id); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteNoContent(w)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tours.Stats(r.Context())
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"stats": stats})
}

func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		models.WriteErr(w, apperr.Validation("year must be numeric"))
		return
	}
	plan, err := h.tours.MonthlyPlan(r.Context(), year)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"plan": plan})
}

// Within handles /tours-within/{distance}/center/{latlng}/unit/{unit}.
func (h *Handler) Within(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	radius, err := strconv.ParseFloat(vars["distance"], 64)
	if err != nil || radius <= 0 {
		models.WriteErr(w, apperr.Validation("distance must be a positive number"))
		return
	}
	lat, lng, err := parseLatLng(vars["latlng"])
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if vars["unit"] == "mi" {
		radius *= 1.609344
	}
	rows, err := h.tours.Within(r.Context(), lat, lng, radius)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"tours": rows},
	})
}

// Distances handles /distances/{latlng}/unit/{unit}.
func (h *Handler) Distances(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lat, lng, err := parseLatLng(vars["latlng"])
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	rows, err := h.tours.Distances(r.Context(), lat, lng)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if vars["unit"] == "mi" {
		for i := range rows {
			rows[i].Distance /= 1.609344
		}
	}
	models.WriteData(w, http.StatusOK, map[string]any{"distances": rows})
}

// applyImageUploads resizes an uploaded cover and up to three gallery images.
func (h *Handler) applyImageUploads(r *http.Request, tour *models.Tour) error {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return apperr.Validation("invalid multipart form")
	}
	now := time.Now().UnixMilli()

	if file, header, err := r.FormFile("imageCover"); err == nil {
		defer file.Close()
		if !images.IsImage(header.Header.Get("Content-Type")) {
			return apperr.Validation("not an image, please upload only images")
		}
		name := fmt.Sprintf("tour-%d-%d-cover", tour.ID, now)
		saved, err := images.SaveTourImage(file, h.cfg.Uploads.Dir, name)
		if err != nil {
			return err
		}
		tour.ImageCover = saved
	}

	if r.MultipartForm != nil {
		var gallery []string
		for i, header := range r.MultipartForm.File["images"] {
			if i >= 3 {
				break
			}
			file, err := header.Open()
			if err != nil {
				return err
			}
			name := fmt.Sprintf("tour-%d-%d-%d", tour.ID, now, i+1)
			saved, err := images.SaveTourImage(file, h.cfg.Uploads.Dir, name)
			file.Close()
			if err != nil {
				return err
			}
			gallery = append(gallery, saved)
		}
		if len(gallery) > 0 {
			raw, err := json.Marshal(gallery)
			if err != nil {
				return err
			}
			tour.Images = datatypes.JSON(raw)
		}
	}
	return nil
}

func validateTour(t *models.Tour) error {
	if n := len(t.Name); n < 10 || n > 40 {
		return apperr.Validation("a tour name must have between 10 and 40 characters")
	}
	if !t.Difficulty.Valid() {
		return apperr.Validation("difficulty is either: easy, medium, difficult")
	}
	if t.Duration <= 0 || t.MaxGroupSize <= 0 {
		return apperr.Validation("a tour must have a duration and a group size")
	}
	if t.Price <= 0 {
		return apperr.Validation("a tour must have a price")
	}
	if t.PriceDiscount != nil && *t.PriceDiscount >= t.Price {
		return apperr.Validation("discount price (%.2f) should be below the regular price", *t.PriceDiscount)
	}
	if t.RatingsAverage < 1 || t.RatingsAverage > 5 {
		if t.RatingsAverage == 0 {
			t.RatingsAverage = 4.5
		} else {
			return apperr.Validation("rating must be between 1.0 and 5.0")
		}
	}
	if strings.TrimSpace(t.Summary) == "" {
		return apperr.Validation("a tour must have a summary")
	}
	return nil
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id: %s", mux.Vars(r)["id"])
	}
	return uint(id), nil
}

func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("please provide latitude and longitude as lat,lng")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, apperr.Validation("invalid latitude %q", parts[0])
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, apperr.Validation("invalid longitude %q", parts[1])
	}
	return lat, lng, nil
}

package bookings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"wayfarer/config"
	"wayfarer/internal/apperr"
	"wayfarer/internal/auth"
	"wayfarer/internal/logs"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
	"wayfarer/internal/repo"
)

type Handler struct {
	bookings *repo.BookingStore
	tours    *repo.TourStore
	cfg      *config.Config
}

func New(bookings *repo.BookingStore, tours *repo.TourStore, cfg *config.Config) *Handler {
	stripe.Key = cfg.Stripe.SecretKey
	return &Handler{bookings: bookings, tours: tours, cfg: cfg}
}

// CheckoutSession opens a Stripe Checkout session for one tour. The success
// URL carries tour/user/price so the redirect can record the booking without
// a webhook.
func (h *Handler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	tourID, err := strconv.ParseUint(mux.Vars(r)["tourId"], 10, 64)
	if err != nil || tourID == 0 {
		models.WriteErr(w, apperr.Validation("invalid tour id"))
		return
	}
	tour, err := h.tours.ByID(r.Context(), uint(tourID))
	if err != nil {
		models.WriteErr(w, err)
		return
	}

	successURL := fmt.Sprintf("%s/?tour=%d&user=%d&price=%.2f",
		h.cfg.Server.PublicURL, tour.ID, user.ID, tour.Price)
	cancelURL := fmt.Sprintf("%s/tour/%s", h.cfg.Server.PublicURL, tour.Slug)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(strconv.FormatUint(tourID, 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(int64(tour.Price * 100)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(tour.Name + " Tour"),
					Description: stripe.String(tour.Summary),
				},
			},
		}},
	}
	s, err := session.New(params)
	if err != nil {
		logs.Logger.Errorf("stripe checkout for tour %d failed: %v", tour.ID, err)
		models.WriteErr(w, apperr.ErrDownstream)
		return
	}

	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"session": map[string]any{"id": s.ID, "url": s.URL},
	})
}

// CheckoutRedirect records the booking when the success redirect lands on
// the site root with tour/user/price query parameters, then strips them from
// the URL. Temporary solution until payments move to webhooks.
func (h *Handler) CheckoutRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		tourID, err1 := strconv.ParseUint(q.Get("tour"), 10, 64)
		userID, err2 := strconv.ParseUint(q.Get("user"), 10, 64)
		price, err3 := strconv.ParseFloat(q.Get("price"), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			next.ServeHTTP(w, r)
			return
		}

		b := &models.Booking{TourID: uint(tourID), UserID: uint(userID), Price: price, Paid: true}
		if err := h.bookings.Create(r.Context(), b); err != nil {
			logs.Logger.Errorf("booking from checkout redirect failed: %v", err)
		}
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	})
}

// MyTours lists the bookings of the logged-in user.
func (h *Handler) MyTours(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	rows, err := h.bookings.ByUser(r.Context(), user.ID)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"bookings": rows},
	})
}

// --- admin CRUD ---

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.bookings.List(r.Context(), query.Parse(r.URL.Query()))
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"bookings": rows},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	b, err := h.bookings.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"booking": b})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var b models.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	if b.TourID == 0 || b.UserID == 0 || b.Price <= 0 {
		models.WriteErr(w, apperr.Validation("booking must have a tour, a user and a price"))
		return
	}
	if err := h.bookings.Create(r.Context(), &b); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusCreated, map[string]any{"booking": &b})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	b, err := h.bookings.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	b.ID = id
	if err := h.bookings.Update(r.Context(), b); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"booking": b})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.bookings.Delete(r.Context(), id); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteNoContent(w)
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id: %s", mux.Vars(r)["id"])
	}
	return uint(id), nil
}

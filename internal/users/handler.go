package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wayfarer/config"
	"wayfarer/internal/apperr"
	"wayfarer/internal/auth"
	"wayfarer/internal/images"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
	"wayfarer/internal/repo"
)

type Handler struct {
	users *repo.UserStore
	cfg   *config.Config
}

func New(users *repo.UserStore, cfg *config.Config) *Handler {
	return &Handler{users: users, cfg: cfg}
}

// Me returns the logged-in user's own record.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	models.WriteData(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateMe changes profile fields of the logged-in user. Password changes are
// rejected here; they must go through updateMyPassword so the token
// invalidation stamp is never skipped.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	fields := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			models.WriteErr(w, apperr.Validation("invalid multipart form"))
			return
		}
		if v := r.FormValue("name"); v != "" {
			fields["name"] = v
		}
		if v := r.FormValue("email"); v != "" {
			fields["email"] = strings.ToLower(strings.TrimSpace(v))
		}
		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			if !images.IsImage(header.Header.Get("Content-Type")) {
				models.WriteErr(w, apperr.Validation("not an image, please upload only images"))
				return
			}
			name := fmt.Sprintf("user-%d-%d", user.ID, time.Now().UnixMilli())
			saved, err := images.SaveUserPhoto(file, h.cfg.Uploads.Dir, name)
			if err != nil {
				models.WriteErr(w, err)
				return
			}
			fields["photo"] = saved
		}
	} else {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			models.WriteErr(w, apperr.Validation("invalid request body"))
			return
		}
		if _, ok := body["password"]; ok {
			models.WriteErr(w, apperr.Validation(
				"this route is not for password updates, please use /updateMyPassword"))
			return
		}
		if _, ok := body["passwordConfirm"]; ok {
			models.WriteErr(w, apperr.Validation(
				"this route is not for password updates, please use /updateMyPassword"))
			return
		}
		fields = body
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, fields)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"user": updated})
}

// DeleteMe soft-deletes: the row stays, the account disappears.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	if err := h.users.Deactivate(r.Context(), user.ID); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteNoContent(w)
}

// --- admin CRUD ---

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.users.List(r.Context(), query.Parse(r.URL.Query()))
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(rows),
		"data":    map[string]any{"users": rows},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	user, err := h.users.ByID(r.Context(), id)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if user == nil {
		models.WriteErr(w, apperr.ErrNotFound)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"user": user})
}

// Update is the admin profile edit; never touches passwords.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		models.WriteErr(w, apperr.Validation("invalid request body"))
		return
	}
	updated, err := h.users.UpdateProfile(r.Context(), id, body)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if updated == nil {
		models.WriteErr(w, apperr.ErrNotFound)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.users.Deactivate(r.Context(), id); err != nil {
		models.WriteErr(w, err)
		return
	}
	models.WriteNoContent(w)
}

// Create exists so POST /users answers something sensible.
func (h *Handler) Create(w http.ResponseWriter, _ *http.Request) {
	models.WriteProblem(w, http.StatusInternalServerError,
		"Not Implemented",
		"this route is not defined, please use /signup instead", nil)
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id: %s", mux.Vars(r)["id"])
	}
	return uint(id), nil
}

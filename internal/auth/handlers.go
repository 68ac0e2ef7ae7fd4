package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wayfarer/config"
	"wayfarer/internal/apperr"
	"wayfarer/internal/logs"
	"wayfarer/internal/models"
)

// CredentialStore is the full credential collaborator surface the auth
// handlers need. All lookups honor the active flag; password/counter fields
// come back populated.
type CredentialStore interface {
	CredentialSource
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, id uint, hash string) error
	SetResetToken(ctx context.Context, id uint, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id uint) error
	IncrementFailedLogins(ctx context.Context, id uint) error
	ResetFailedLogins(ctx context.Context, id uint) error
}

// Mailer delivers out-of-band notifications. A reset-mail failure must roll
// back the stored reset token, so errors are not swallowed here.
type Mailer interface {
	SendWelcome(ctx context.Context, u *models.User, url string) error
	SendPasswordReset(ctx context.Context, u *models.User, resetURL string) error
}

// Handlers owns the credential lifecycle endpoints.
type Handlers struct {
	cfg   *config.Config
	store CredentialStore
	codec *Codec
	mail  Mailer
}

func NewHandlers(cfg *config.Config, store CredentialStore, codec *Codec, mail Mailer) *Handlers {
	return &Handlers{cfg: cfg, store: store, codec: codec, mail: mail}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	passwordRequest
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func validatePassword(password, confirm string) error {
	if len(password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	if password != confirm {
		return apperr.Validation("passwords are not the same")
	}
	return nil
}

// sendToken sets the jwt cookie and answers with token + sanitized user.
func (h *Handlers) sendToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := h.codec.Sign(user.ID)
	if err != nil {
		models.WriteErr(w, fmt.Errorf("sign token: %w", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWT.CookieMaxAge),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	models.WriteJSON(w, status, map[string]any{
		"status": "success",
		"token":  token,
		"data":   map[string]any{"user": user},
	})
}

// Signup registers a new credential and logs it in.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		models.WriteErr(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		models.WriteErr(w, apperr.Validation("please provide your name and a valid email"))
		return
	}
	if err := validatePassword(req.Password, req.PasswordConfirm); err != nil {
		models.WriteErr(w, err)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		models.WriteErr(w, err)
		return
	}

	// welcome mail is best effort, signup must not fail on it
	if err := h.mail.SendWelcome(r.Context(), user, h.cfg.Server.PublicURL+"/me"); err != nil {
		logs.Logger.Warnf("welcome mail to %s failed: %v", user.Email, err)
	}

	h.sendToken(w, http.StatusCreated, user)
}

// Login verifies credentials under the lockout rules: once the counter has
// reached the configured maximum the account stays frozen regardless of the
// presented password, until a successful login would reset it, which can no
// longer happen without operator intervention.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		models.WriteErr(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		models.WriteErr(w, apperr.Validation("please provide email and password"))
		return
	}

	user, err := h.store.ByEmail(r.Context(), req.Email)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if user == nil {
		// same answer as a wrong password, no account enumeration
		models.WriteErr(w, apperr.ErrInvalidCredentials)
		return
	}

	if user.FailedLoginAttempts >= h.cfg.Auth.MaxLoginAttempts {
		// counter keeps growing so the lockout is durably visible;
		// the password is deliberately not checked
		if err := h.store.IncrementFailedLogins(r.Context(), user.ID); err != nil {
			models.WriteErr(w, err)
			return
		}
		models.WriteErr(w, apperr.ErrAccountFrozen)
		return
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		if err := h.store.IncrementFailedLogins(r.Context(), user.ID); err != nil {
			models.WriteErr(w, err)
			return
		}
		models.WriteErr(w, apperr.ErrInvalidCredentials)
		return
	}

	if err := h.store.ResetFailedLogins(r.Context(), user.ID); err != nil {
		models.WriteErr(w, err)
		return
	}
	h.sendToken(w, http.StatusOK, user)
}

// Logout overwrites the cookie with a short-lived sentinel.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    loggedOutSentinel,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	models.WriteJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// ForgotPassword stores a hashed reset token and mails the raw one. A mail
// failure rolls the stored token back so no unusable token lingers.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		models.WriteErr(w, err)
		return
	}
	user, err := h.store.ByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if user == nil {
		models.WriteErr(w, apperr.ErrNotFound)
		return
	}

	raw, hash, err := NewResetToken()
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	expires := time.Now().Add(h.cfg.Auth.ResetTokenTTL)
	if err := h.store.SetResetToken(r.Context(), user.ID, hash, expires); err != nil {
		models.WriteErr(w, err)
		return
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", h.cfg.Server.PublicURL, raw)
	if err := h.mail.SendPasswordReset(r.Context(), user, resetURL); err != nil {
		if rbErr := h.store.ClearResetToken(r.Context(), user.ID); rbErr != nil {
			logs.Logger.Errorf("reset token rollback for user %d failed: %v", user.ID, rbErr)
		}
		logs.Logger.Errorf("password reset mail to %s failed: %v", user.Email, err)
		models.WriteErr(w, apperr.ErrDownstream)
		return
	}

	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "token sent to email",
	})
}

// ResetPassword redeems a raw reset token from the URL.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["token"]
	var req passwordRequest
	if err := decode(r, &req); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := validatePassword(req.Password, req.PasswordConfirm); err != nil {
		models.WriteErr(w, err)
		return
	}

	user, err := h.store.ByResetTokenHash(r.Context(), HashResetToken(raw), time.Now())
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if user == nil {
		models.WriteErr(w, apperr.ErrInvalidOrExpiredToken)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.store.SetPassword(r.Context(), user.ID, hash); err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.store.ClearResetToken(r.Context(), user.ID); err != nil {
		models.WriteErr(w, err)
		return
	}
	h.sendToken(w, http.StatusOK, user)
}

// UpdatePassword changes the password of the logged-in user and reissues the
// token (the old one turns stale via password_changed_at).
func (h *Handlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := CurrentUser(r)
	if !ok {
		models.WriteErr(w, apperr.ErrUnauthenticated)
		return
	}
	var req updatePasswordRequest
	if err := decode(r, &req); err != nil {
		models.WriteErr(w, err)
		return
	}

	user, err := h.store.ByID(r.Context(), current.ID)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if user == nil {
		models.WriteErr(w, apperr.ErrUnknownSubject)
		return
	}
	if !CheckPassword(user.PasswordHash, req.PasswordCurrent) {
		models.WriteErr(w, apperr.ErrInvalidCredentials)
		return
	}
	if err := validatePassword(req.Password, req.PasswordConfirm); err != nil {
		models.WriteErr(w, err)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		models.WriteErr(w, err)
		return
	}
	if err := h.store.SetPassword(r.Context(), user.ID, hash); err != nil {
		models.WriteErr(w, err)
		return
	}
	h.sendToken(w, http.StatusOK, user)
}

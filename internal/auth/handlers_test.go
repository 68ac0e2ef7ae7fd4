package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/config"
	"wayfarer/internal/logs"
	"wayfarer/internal/models"
)

func TestMain(m *testing.M) {
	logs.Init(logs.Options{Level: "error"})
	os.Exit(m.Run())
}

// memStore is an in-memory CredentialStore for handler tests.
type memStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uint]*models.User)}
}

func (s *memStore) ByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok && u.Active {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ByResetTokenHash(_ context.Context, hash string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Active && u.PasswordResetToken == hash &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) SetPassword(_ context.Context, id uint, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	changed := time.Now().Add(-time.Second)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changed
	return nil
}

func (s *memStore) SetResetToken(_ context.Context, id uint, hash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordResetToken = hash
	u.PasswordResetExpires = &expires
	return nil
}

func (s *memStore) ClearResetToken(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

func (s *memStore) IncrementFailedLogins(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.FailedLoginAttempts++
	}
	return nil
}

func (s *memStore) ResetFailedLogins(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.FailedLoginAttempts = 0
	}
	return nil
}

func (s *memStore) get(id uint) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	mu       sync.Mutex
	fail     bool
	welcomes []string
	resets   []string // reset URLs
}

func (m *fakeMailer) SendWelcome(_ context.Context, u *models.User, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.welcomes = append(m.welcomes, u.Email)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _ *models.User, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.resets = append(m.resets, resetURL)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.Server.PublicURL = "http://localhost:8080"
	cfg.JWT.Secret = "handler-secret"
	cfg.JWT.ExpiresIn = time.Hour
	cfg.JWT.CookieMaxAge = time.Hour
	cfg.Auth.MaxLoginAttempts = 3
	cfg.Auth.ResetTokenTTL = 10 * time.Minute
	return cfg
}

func newTestHandlers(t *testing.T) (*Handlers, *memStore, *fakeMailer) {
	t.Helper()
	cfg := testConfig()
	store := newMemStore()
	mail := &fakeMailer{}
	h := NewHandlers(cfg, store, NewCodec(cfg.JWT.Secret, cfg.JWT.ExpiresIn), mail)
	return h, store, mail
}

func seedUser(t *testing.T, store *memStore, email, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Name:         "Test User",
		Email:        email,
		Role:         models.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestSignup(t *testing.T) {
	t.Parallel()

	h, store, mail := newTestHandlers(t)

	w := postJSON(t, h.Signup, "/signup", map[string]string{
		"name":            "Ada",
		"email":           "Ada@Example.COM",
		"password":        "pass12345",
		"passwordConfirm": "pass12345",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// password material must not leak into the response
	assert.NotContains(t, w.Body.String(), "pass12345")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// jwt cookie is set
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	u := store.get(1)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, CheckPassword(u.PasswordHash, "pass12345"))
	assert.Equal(t, []string{"ada@example.com"}, mail.welcomes)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing name", body: map[string]string{"email": "a@b.c", "password": "pass12345", "passwordConfirm": "pass12345"}},
		{name: "bad email", body: map[string]string{"name": "A", "email": "nope", "password": "pass12345", "passwordConfirm": "pass12345"}},
		{name: "short password", body: map[string]string{"name": "A", "email": "a@b.c", "password": "short", "passwordConfirm": "short"}},
		{name: "mismatched confirm", body: map[string]string{"name": "A", "email": "a@b.c", "password": "pass12345", "passwordConfirm": "pass54321"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := postJSON(t, h.Signup, "/signup", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSignup_MailFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	h, _, mail := newTestHandlers(t)
	mail.fail = true

	w := postJSON(t, h.Signup, "/signup", map[string]string{
		"name":            "Ada",
		"email":           "ada@example.com",
		"password":        "pass12345",
		"passwordConfirm": "pass12345",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	w := postJSON(t, h.Login, "/login", map[string]string{
		"email": "ada@example.com", "password": "pass12345",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Zero(t, store.get(u.ID).FailedLoginAttempts)
}

func TestLogin_WrongPasswordIncrementsCounter(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	for i := 1; i <= 2; i++ {
		w := postJSON(t, h.Login, "/login", map[string]string{
			"email": "ada@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, i, store.get(u.ID).FailedLoginAttempts)
	}

	// a success below the limit clears the counter
	w := postJSON(t, h.Login, "/login", map[string]string{
		"email": "ada@example.com", "password": "pass12345",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, store.get(u.ID).FailedLoginAttempts)
}

func TestLogin_FrozenAccount(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")
	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementFailedLogins(context.Background(), u.ID))
	}

	// the correct password does not thaw a frozen account, and every
	// attempt keeps growing the counter
	w := postJSON(t, h.Login, "/login", map[string]string{
		"email": "ada@example.com", "password": "pass12345",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "frozen")
	assert.Equal(t, 4, store.get(u.ID).FailedLoginAttempts)
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)
	w := postJSON(t, h.Login, "/login", map[string]string{
		"email": "ghost@example.com", "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// same message as a wrong password, no account enumeration
	assert.Contains(t, w.Body.String(), "incorrect email or password")
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	h, store, mail := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	w := postJSON(t, h.ForgotPassword, "/forgotPassword", map[string]string{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	stored := store.get(u.ID)
	require.NotEmpty(t, stored.PasswordResetToken)
	require.NotNil(t, stored.PasswordResetExpires)
	require.Len(t, mail.resets, 1)

	// the mailed URL carries the raw token, the store only its hash
	raw := mail.resets[0][strings.LastIndex(mail.resets[0], "/")+1:]
	assert.NotEqual(t, raw, stored.PasswordResetToken)
	assert.Equal(t, HashResetToken(raw), stored.PasswordResetToken)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)
	w := postJSON(t, h.ForgotPassword, "/forgotPassword", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForgotPassword_MailFailureRollsBackToken(t *testing.T) {
	t.Parallel()

	h, store, mail := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")
	mail.fail = true

	w := postJSON(t, h.ForgotPassword, "/forgotPassword", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	stored := store.get(u.ID)
	assert.Empty(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func resetRequest(t *testing.T, token string, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/resetPassword/%s", token), bytes.NewReader(buf))
	return mux.SetURLVars(r, map[string]string{"token": token})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	raw, hash, err := NewResetToken()
	require.NoError(t, err)
	require.NoError(t, store.SetResetToken(context.Background(), u.ID, hash, time.Now().Add(10*time.Minute)))

	w := httptest.NewRecorder()
	h.ResetPassword(w, resetRequest(t, raw, map[string]string{
		"password": "newpass123", "passwordConfirm": "newpass123",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	stored := store.get(u.ID)
	assert.True(t, CheckPassword(stored.PasswordHash, "newpass123"))
	assert.Empty(t, stored.PasswordResetToken)
	require.NotNil(t, stored.PasswordChangedAt)
}

func TestResetPassword_BadToken(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	raw, hash, err := NewResetToken()
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(t *testing.T)
		token string
	}{
		{
			name:  "expired",
			token: raw,
			setup: func(t *testing.T) {
				require.NoError(t, store.SetResetToken(context.Background(), u.ID, hash, time.Now().Add(-time.Minute)))
			},
		},
		{
			name:  "never issued",
			token: "deadbeef",
			setup: func(t *testing.T) {
				require.NoError(t, store.ClearResetToken(context.Background(), u.ID))
			},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.setup(t)
			w := httptest.NewRecorder()
			h.ResetPassword(w, resetRequest(t, tc.token, map[string]string{
				"password": "newpass123", "passwordConfirm": "newpass123",
			}))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	u := seedUser(t, store, "ada@example.com", "pass12345")

	do := func(current, next string) *httptest.ResponseRecorder {
		buf, err := json.Marshal(map[string]string{
			"passwordCurrent": current, "password": next, "passwordConfirm": next,
		})
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodPatch, "/updateMyPassword", bytes.NewReader(buf))
		r = withUser(r, u)
		w := httptest.NewRecorder()
		h.UpdatePassword(w, r)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("wrong-current", "newpass123").Code)
	assert.False(t, CheckPassword(store.get(u.ID).PasswordHash, "newpass123"))

	require.Equal(t, http.StatusOK, do("pass12345", "newpass123").Code)
	assert.True(t, CheckPassword(store.get(u.ID).PasswordHash, "newpass123"))
}

package auth

import (
	"context"
	"net/http"
	"strings"

	"wayfarer/internal/apperr"
	"wayfarer/internal/models"
)

// CredentialSource resolves token subjects against the credential store.
// Implemented by repo.UserStore; kept narrow so the guard can be tested with
// an in-memory fake.
type CredentialSource interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// Guard is the authentication/authorization middleware chain.
type Guard struct {
	users CredentialSource
	codec *Codec
}

func NewGuard(users CredentialSource, codec *Codec) *Guard {
	return &Guard{users: users, codec: codec}
}

type userKey struct{}

// CurrentUser returns the identity attached by Protect or IsLoggedIn.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(userKey{}).(*models.User)
	return u, ok
}

func withUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, u))
}

// CookieName carries the access token for browser clients.
const CookieName = "jwt"

// loggedOutSentinel is what Logout overwrites the cookie with.
const loggedOutSentinel = "loggedout"

func extractToken(r *http.Request) string {
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" && c.Value != loggedOutSentinel {
		return c.Value
	}
	return ""
}

// resolve runs the full verification chain: extract, verify, resolve subject,
// stale-password check.
func (g *Guard) resolve(r *http.Request) (*models.User, error) {
	raw := extractToken(r)
	if raw == "" {
		return nil, apperr.ErrUnauthenticated
	}
	claims, err := g.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	user, err := g.users.ByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUnknownSubject
	}
	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, apperr.ErrStalePassword
	}
	return user, nil
}

// Protect rejects the request unless it carries a valid token for an existing
// credential. On success the credential rides on the request context.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		if err != nil {
			models.WriteErr(w, err)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// IsLoggedIn attaches the identity when the checks pass and continues
// anonymously on any failure. Rendered pages only, never access control.
func (g *Guard) IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := g.resolve(r); err == nil {
			r = withUser(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

// RestrictTo allows only the listed roles through. Must run after Protect.
func (g *Guard) RestrictTo(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r)
			if !ok {
				models.WriteErr(w, apperr.ErrUnauthenticated)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				models.WriteErr(w, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

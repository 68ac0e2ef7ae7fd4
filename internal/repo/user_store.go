package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"wayfarer/internal/models"
	"wayfarer/internal/query"
)

// UserStore is the credential store. Every lookup filters on the active flag;
// soft-deleted users behave as if they do not exist.
type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("active = ?", true)
}

func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.active(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.active(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

// ByResetTokenHash finds the credential whose stored reset hash matches and
// whose expiry has not passed.
func (s *UserStore) ByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	var u models.User
	err := s.active(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", hash, now).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// profileUpdates whitelists the writable profile fields and normalizes the
// email the same way login does; a profile edit must never strand the account
// behind a mixed-case address the login lookup cannot match.
func profileUpdates(fields map[string]any) map[string]any {
	updates := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "name", "photo":
			updates[k] = v
		case "email":
			if s, ok := v.(string); ok {
				v = strings.ToLower(strings.TrimSpace(s))
			}
			updates[k] = v
		}
	}
	return updates
}

// UpdateProfile writes only the whitelisted profile fields; password changes
// go through SetPassword so the changed-at stamp cannot be skipped.
func (s *UserStore) UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*models.User, error) {
	updates := profileUpdates(fields)
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND active = ?", id, true).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.ByID(ctx, id)
}

// Deactivate soft-deletes; the row stays.
func (s *UserStore) Deactivate(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// SetPassword stores the new hash and stamps password_changed_at slightly in
// the past so a token issued in the same second still counts as pre-change.
func (s *UserStore) SetPassword(ctx context.Context, id uint, hash string) error {
	changedAt := time.Now().Add(-time.Second)
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":       hash,
			"password_changed_at": changedAt,
		}).Error
}

func (s *UserStore) SetResetToken(ctx context.Context, id uint, hash string, expires time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_reset_token":   hash,
			"password_reset_expires": expires,
		}).Error
}

func (s *UserStore) ClearResetToken(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_reset_token":   "",
			"password_reset_expires": nil,
		}).Error
}

// IncrementFailedLogins is a single conditional update on the backing store.
// Concurrent requests for the same credential may still interleave between
// read and write in the login flow; the lockout can under-count. Known race.
func (s *UserStore) IncrementFailedLogins(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error
}

func (s *UserStore) ResetFailedLogins(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("failed_login_attempts", 0).Error
}

// List returns users through the composed query; password material rides
// along in the struct but never serializes.
func (s *UserStore) List(ctx context.Context, d query.Descriptor) ([]models.User, error) {
	var out []models.User
	tx := d.Apply(s.active(ctx).Model(&models.User{}))
	return out, tx.Find(&out).Error
}

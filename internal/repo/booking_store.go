package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wayfarer/internal/apperr"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
)

type BookingStore struct{ db *gorm.DB }

func NewBookingStore(db *gorm.DB) *BookingStore { return &BookingStore{db: db} }

func (s *BookingStore) List(ctx context.Context, d query.Descriptor) ([]models.Booking, error) {
	var out []models.Booking
	tx := d.Apply(s.db.WithContext(ctx).Model(&models.Booking{}))
	return out, tx.Find(&out).Error
}

func (s *BookingStore) ByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Preload("Tour").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &b, err
}

// ByUser lists the tours a user has booked.
func (s *BookingStore) ByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db.WithContext(ctx).Preload("Tour").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (s *BookingStore) Create(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *BookingStore) Update(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *BookingStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

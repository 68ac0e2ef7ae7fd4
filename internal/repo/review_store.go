package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wayfarer/internal/apperr"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
)

type ReviewStore struct{ db *gorm.DB }

func NewReviewStore(db *gorm.DB) *ReviewStore { return &ReviewStore{db: db} }

// List runs a composed read, optionally scoped to one tour (nested route).
func (s *ReviewStore) List(ctx context.Context, tourID uint, d query.Descriptor) ([]models.Review, error) {
	var out []models.Review
	tx := s.db.WithContext(ctx).Model(&models.Review{}).Preload("User")
	if tourID != 0 {
		tx = tx.Where("tour_id = ?", tourID)
	}
	return out, d.Apply(tx).Find(&out).Error
}

func (s *ReviewStore) ByID(ctx context.Context, id uint) (*models.Review, error) {
	var rv models.Review
	err := s.db.WithContext(ctx).Preload("User").First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &rv, err
}

func (s *ReviewStore) Create(ctx context.Context, rv *models.Review) error {
	return s.db.WithContext(ctx).Create(rv).Error
}

func (s *ReviewStore) Update(ctx context.Context, rv *models.Review) error {
	return s.db.WithContext(ctx).Save(rv).Error
}

func (s *ReviewStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// RecalcTourRatings recomputes the tour's rating aggregate from its reviews
// and writes it back. Called explicitly by handlers after every successful
// review write instead of hiding in a persistence hook, so it stays visible
// and testable on its own.
func (s *ReviewStore) RecalcTourRatings(ctx context.Context, tourID uint) error {
	type agg struct {
		N   int
		Avg float64
	}
	var a agg
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg").
		Where("tour_id = ?", tourID).
		Scan(&a).Error
	if err != nil {
		return err
	}

	quantity, average := a.N, a.Avg
	if quantity == 0 {
		average = 4.5 // collection default when all reviews are gone
	} else {
		average = float64(int(average*10+0.5)) / 10 // one decimal, as displayed
	}
	return s.db.WithContext(ctx).Model(&models.Tour{}).
		Where("id = ?", tourID).
		Updates(map[string]any{
			"ratings_quantity": quantity,
			"ratings_average":  average,
		}).Error
}

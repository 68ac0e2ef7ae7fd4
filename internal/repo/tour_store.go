package repo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"wayfarer/internal/apperr"
	"wayfarer/internal/models"
	"wayfarer/internal/query"
)

type TourStore struct{ db *gorm.DB }

func NewTourStore(db *gorm.DB) *TourStore { return &TourStore{db: db} }

// public hides secret tours from every listing; single-tour fetch by id or
// slug skips it so direct admin links keep working.
func (s *TourStore) public(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("secret = ?", false)
}

// List runs a composed read over the tours collection.
func (s *TourStore) List(ctx context.Context, d query.Descriptor) ([]models.Tour, error) {
	var out []models.Tour
	tx := d.Apply(s.public(ctx).Model(&models.Tour{}))
	return out, tx.Find(&out).Error
}

func (s *TourStore) ByID(ctx context.Context, id uint) (*models.Tour, error) {
	var t models.Tour
	err := s.db.WithContext(ctx).
		Preload("StartDates").Preload("Locations").Preload("Guides").
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &t, err
}

func (s *TourStore) BySlug(ctx context.Context, slug string) (*models.Tour, error) {
	var t models.Tour
	err := s.db.WithContext(ctx).
		Preload("StartDates").Preload("Locations").Preload("Guides").
		Where("slug = ?", slug).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &t, err
}

func (s *TourStore) Create(ctx context.Context, t *models.Tour) error {
	t.Slug = Slugify(t.Name)
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *TourStore) Update(ctx context.Context, t *models.Tour) error {
	if t.Name != "" {
		t.Slug = Slugify(t.Name)
	}
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *TourStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Tour{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// TourStats is one difficulty bucket over well-rated tours.
type TourStats struct {
	Difficulty models.Difficulty `json:"difficulty"`
	NumTours   int               `json:"numTours"`
	NumRatings int               `json:"numRatings"`
	AvgRating  float64           `json:"avgRating"`
	AvgPrice   float64           `json:"avgPrice"`
	MinPrice   float64           `json:"minPrice"`
	MaxPrice   float64           `json:"maxPrice"`
}

// Stats aggregates tours with an average rating of at least 4.5 by difficulty.
func (s *TourStore) Stats(ctx context.Context) ([]TourStats, error) {
	var out []TourStats
	err := s.public(ctx).Model(&models.Tour{}).
		Select(`difficulty,
			COUNT(*) AS num_tours,
			SUM(ratings_quantity) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("ratings_average >= ?", 4.5).
		Group("difficulty").
		Order("avg_price asc").
		Scan(&out).Error
	return out, err
}

// MonthlyPlanEntry counts departures per calendar month of one year.
type MonthlyPlanEntry struct {
	Month    int `json:"month"`
	NumTours int `json:"numTours"`
}

func (s *TourStore) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	var out []MonthlyPlanEntry
	err := s.db.WithContext(ctx).Model(&models.TourStartDate{}).
		Select("EXTRACT(MONTH FROM starts_at) AS month, COUNT(*) AS num_tours").
		Where("EXTRACT(YEAR FROM starts_at) = ?", year).
		Group("month").
		Order("num_tours desc").
		Scan(&out).Error
	return out, err
}

// haversine distance in kilometers between the tour start point and (?, ?)
const haversineKm = `6371 * acos(
	cos(radians(?)) * cos(radians(start_lat)) * cos(radians(start_lng) - radians(?))
	+ sin(radians(?)) * sin(radians(start_lat)))`

// Within lists tours starting inside radiusKm of the given point.
func (s *TourStore) Within(ctx context.Context, lat, lng, radiusKm float64) ([]models.Tour, error) {
	var out []models.Tour
	err := s.public(ctx).
		Where(haversineKm+" <= ?", lat, lng, lat, radiusKm).
		Find(&out).Error
	return out, err
}

// TourDistance pairs a tour with its distance from a reference point.
type TourDistance struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"` // kilometers
}

func (s *TourStore) Distances(ctx context.Context, lat, lng float64) ([]TourDistance, error) {
	var out []TourDistance
	err := s.public(ctx).Model(&models.Tour{}).
		Select("id, name, "+haversineKm+" AS distance", lat, lng, lat).
		Order("distance asc").
		Scan(&out).Error
	return out, err
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a tour name into its URL slug.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

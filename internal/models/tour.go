package models

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

type Tour struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"uniqueIndex;not null" json:"name"`
	Slug         string     `gorm:"index" json:"slug"`
	Duration     int        `gorm:"not null" json:"duration"`
	MaxGroupSize int        `gorm:"not null" json:"maxGroupSize"`
	Difficulty   Difficulty `gorm:"type:varchar(16);not null" json:"difficulty"`

	// maintained by ReviewStore.RecalcTourRatings after every review write
	RatingsAverage  float64 `gorm:"not null;default:4.5" json:"ratingsAverage"`
	RatingsQuantity int     `gorm:"not null;default:0" json:"ratingsQuantity"`

	Price         float64  `gorm:"not null;index:idx_tours_price_rating,priority:1" json:"price"`
	PriceDiscount *float64 `json:"priceDiscount,omitempty"`

	Summary     string `gorm:"not null" json:"summary"`
	Description string `json:"description,omitempty"`

	ImageCover string         `gorm:"not null" json:"imageCover"`
	Images     datatypes.JSON `json:"images,omitempty"` // gallery file names

	Secret bool `gorm:"not null;default:false" json:"-"` // hidden from public listings

	StartLat     float64 `json:"startLat"`
	StartLng     float64 `json:"startLng"`
	StartAddress string  `json:"startAddress,omitempty"`

	StartDates []TourStartDate `gorm:"constraint:OnDelete:CASCADE" json:"startDates,omitempty"`
	Locations  []TourLocation  `gorm:"constraint:OnDelete:CASCADE" json:"locations,omitempty"`
	Guides     []User          `gorm:"many2many:tour_guides" json:"guides,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// TourStartDate is one departure. Kept as rows so the monthly plan can be
// aggregated in SQL.
type TourStartDate struct {
	ID       uint      `gorm:"primarykey" json:"-"`
	TourID   uint      `gorm:"index;not null" json:"-"`
	StartsAt time.Time `gorm:"not null" json:"startsAt"`
}

// TourLocation is one stop on the itinerary.
type TourLocation struct {
	ID          uint    `gorm:"primarykey" json:"-"`
	TourID      uint    `gorm:"index;not null" json:"-"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
	Day         int     `json:"day"`
}

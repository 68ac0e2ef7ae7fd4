package models

import "time"

// Review of a tour by a user; one review per (tour, user) pair.
type Review struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	Body   string  `gorm:"column:body;not null" json:"review"`
	Rating float64 `gorm:"not null" json:"rating"`

	TourID uint `gorm:"not null;uniqueIndex:idx_reviews_tour_user,priority:1" json:"tourId"`
	UserID uint `gorm:"not null;uniqueIndex:idx_reviews_tour_user,priority:2" json:"userId"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

type Booking struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	TourID uint    `gorm:"index;not null" json:"tourId"`
	Tour   Tour    `gorm:"foreignKey:TourID" json:"tour,omitempty"`
	UserID uint    `gorm:"index;not null" json:"userId"`
	Price  float64 `gorm:"not null" json:"price"` // price at purchase time
	Paid   bool    `gorm:"not null;default:true" json:"paid"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

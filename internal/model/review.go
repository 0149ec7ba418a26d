package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"restaurant,omitempty"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Rating       int        `gorm:"not null" json:"rating"`
	Body         string     `gorm:"type:text" json:"body"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// BeforeSave rejects out-of-range ratings at the persistence layer as well,
// so the invariant holds even for writes that bypass form binding.
func (r *Review) BeforeSave(tx *gorm.DB) error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, r.Rating)
	}
	return nil
}

// IsOwnedBy reports whether userID authored this review. Only the author
// may update or delete it.
func (r *Review) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

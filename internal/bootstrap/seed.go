package bootstrap

import (
	"log"

	"github.com/tablecritic/tablecritic/internal/model"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Restaurant{},
		&model.Review{},
	)
}

// SeedRestaurants creates a handful of sample restaurants for development.
// Restaurants are managed out-of-band in production, so this is the only
// way a fresh dev database gets something to review.
func SeedRestaurants(db *gorm.DB) error {
	sampleNames := []string{
		"The Copper Kettle",
		"Luigi's Trattoria",
		"Saffron House",
		"Harbor & Vine",
	}

	for _, name := range sampleNames {
		var count int64
		if err := db.Model(&model.Restaurant{}).
			Where("name = ?", name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&model.Restaurant{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	log.Println("sample restaurants seeded")
	return nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/model"
	"gorm.io/gorm"
)

// RestaurantListing is a restaurant annotated with the mean of its review
// ratings. AvgRating stays nil when the restaurant has no reviews.
type RestaurantListing struct {
	model.Restaurant
	AvgRating *float64 `json:"avg_rating"`
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *model.Restaurant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	FindAllWithRating(ctx context.Context) ([]RestaurantListing, error)
	AverageRating(ctx context.Context, id uuid.UUID) (*float64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

func (r *restaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindAllWithRating(ctx context.Context) ([]RestaurantListing, error) {
	var listings []RestaurantListing

	err := r.db.WithContext(ctx).
		Model(&model.Restaurant{}).
		Select("restaurants.*, AVG(reviews.rating) AS avg_rating").
		Joins("LEFT JOIN reviews ON reviews.restaurant_id = restaurants.id").
		Group("restaurants.id").
		Order("restaurants.name ASC").
		Find(&listings).Error

	return listings, err
}

// AverageRating returns nil, not zero, when the restaurant has no reviews.
func (r *restaurantRepository) AverageRating(ctx context.Context, id uuid.UUID) (*float64, error) {
	var avg *float64

	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("AVG(rating)").
		Where("restaurant_id = ?", id).
		Scan(&avg).Error

	return avg, err
}

// Delete removes the restaurant and its reviews in one transaction, keeping
// the cascade independent of the engine's FK enforcement.
func (r *restaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Restaurant{}).Error
	})
}

func (r *restaurantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Restaurant{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	FindByRestaurantID(ctx context.Context, restaurantID uuid.UUID) ([]*model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRestaurantID(ctx context.Context, restaurantID uuid.UUID) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Restaurant").
		Where("id = ?", id).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByRestaurantID(ctx context.Context, restaurantID uuid.UUID) ([]*model.Review, error) {
	var reviews []*model.Review

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&reviews).Error

	return reviews, err
}

// Update writes the review row only; preloaded associations stay untouched.
func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User", "Restaurant").Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{}).Error
}

func (r *reviewRepository) CountByRestaurantID(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("restaurant_id = ?", restaurantID).
		Count(&count).Error
	return count, err
}

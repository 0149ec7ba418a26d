package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/model"
	"github.com/tablecritic/tablecritic/internal/repository"
	"github.com/tablecritic/tablecritic/pkg/apperror"
	"gorm.io/gorm"
)

// RestaurantDetail bundles everything the detail page renders: the
// restaurant, its reviews newest first, and the nil-safe average rating.
type RestaurantDetail struct {
	Restaurant *model.Restaurant
	Reviews    []*model.Review
	AvgRating  *float64
}

type RestaurantService interface {
	List(ctx context.Context) ([]repository.RestaurantListing, error)
	Detail(ctx context.Context, id uuid.UUID) (*RestaurantDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	reviewRepo     repository.ReviewRepository
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository, reviewRepo repository.ReviewRepository) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
	}
}

func (s *restaurantService) List(ctx context.Context) ([]repository.RestaurantListing, error) {
	return s.restaurantRepo.FindAllWithRating(ctx)
}

func (s *restaurantService) Detail(ctx context.Context, id uuid.UUID) (*RestaurantDetail, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByRestaurantID(ctx, id)
	if err != nil {
		return nil, err
	}

	avg, err := s.restaurantRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RestaurantDetail{
		Restaurant: restaurant,
		Reviews:    reviews,
		AvgRating:  avg,
	}, nil
}

func (s *restaurantService) Get(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

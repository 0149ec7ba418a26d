package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/dto"
	"github.com/tablecritic/tablecritic/internal/model"
	"github.com/tablecritic/tablecritic/internal/repository"
	"github.com/tablecritic/tablecritic/pkg/apperror"
	"gorm.io/gorm"
)

type ReviewService interface {
	Create(ctx context.Context, userID, restaurantID uuid.UUID, input dto.ReviewForm) (*model.Review, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Review, error)
	GetOwned(ctx context.Context, userID, id uuid.UUID) (*model.Review, error)
	Update(ctx context.Context, userID, id uuid.UUID, input dto.ReviewForm) (*model.Review, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*model.Review, error)
}

type reviewService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, restaurantRepo repository.RestaurantRepository) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
	}
}

// Create binds the new review to the restaurant resolved from the route,
// never to anything in the submitted form. The restaurant must exist before
// any field validation is considered.
func (s *reviewService) Create(ctx context.Context, userID, restaurantID uuid.UUID, input dto.ReviewForm) (*model.Review, error) {
	if _, err := s.restaurantRepo.FindByID(ctx, restaurantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if input.Rating < model.MinRating || input.Rating > model.MaxRating {
		return nil, apperror.ErrInvalidInput
	}

	review := &model.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		Rating:       input.Rating,
		Body:         input.Body,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// GetOwned resolves the review and then runs the ownership guard: existence
// first, so a non-owner sees 403 rather than a masked 404.
func (s *reviewService) GetOwned(ctx context.Context, userID, id uuid.UUID) (*model.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !review.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}

	return review, nil
}

// Update mutates rating and body in place. Author, restaurant and the
// creation timestamp are never touched; gorm bumps updated_at on save.
func (s *reviewService) Update(ctx context.Context, userID, id uuid.UUID, input dto.ReviewForm) (*model.Review, error) {
	review, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Rating < model.MinRating || input.Rating > model.MaxRating {
		return nil, apperror.ErrInvalidInput
	}

	review.Rating = input.Rating
	review.Body = input.Body

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete permanently removes the review and returns the deleted row so the
// caller can redirect to the parent restaurant.
func (s *reviewService) Delete(ctx context.Context, userID, id uuid.UUID) (*model.Review, error) {
	review, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return review, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
)

// SocialService owns favorites, ratings and reviews. The ownership policy
// (no self-rating/self-review) is enforced here, before any write reaches
// the store.
type SocialService struct {
	social *repository.SocialRepository
	builds *repository.BuildRepository
}

func NewSocialService(social *repository.SocialRepository, builds *repository.BuildRepository) *SocialService {
	return &SocialService{social: social, builds: builds}
}

// SetRatingRequest carries the 1..5 rating value.
type SetRatingRequest struct {
	Value int `json:"value" binding:"required"`
}

// SetReviewRequest carries the review text.
type SetReviewRequest struct {
	Content string `json:"content" binding:"required"`
}

// ToggleFavorite flips the viewer's favorite on a build and returns the new
// state.
func (s *SocialService) ToggleFavorite(ctx context.Context, userID, buildID string) (bool, error) {
	if _, err := s.existingBuild(ctx, buildID); err != nil {
		return false, err
	}
	favorited, err := s.social.ToggleFavorite(ctx, buildID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorited, nil
}

// SetRating upserts the viewer's rating. Out-of-range values fail
// validation; rating one's own build is rejected by the canRate predicate.
func (s *SocialService) SetRating(ctx context.Context, userID, buildID string, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	build, err := s.existingBuild(ctx, buildID)
	if err != nil {
		return err
	}
	if !canRate(userID, build.UserID) {
		return ErrSelfRating
	}
	if err := s.social.UpsertRating(ctx, buildID, userID, value); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// SetReview upserts the viewer's review; re-submitting replaces the content
// of the existing row. The self-rating policy applies equally here.
func (s *SocialService) SetReview(ctx context.Context, userID, buildID, content string) error {
	build, err := s.existingBuild(ctx, buildID)
	if err != nil {
		return err
	}
	if !canRate(userID, build.UserID) {
		return ErrSelfRating
	}
	if err := s.social.UpsertReview(ctx, buildID, userID, content); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

// Stats returns the rating aggregate for a build.
func (s *SocialService) Stats(ctx context.Context, buildID string) (*RatingStats, error) {
	if _, err := s.existingBuild(ctx, buildID); err != nil {
		return nil, err
	}
	average, count, err := s.social.RatingStats(ctx, buildID)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	return &RatingStats{Average: average, Count: count}, nil
}

// ListReviews returns a build's reviews with authors.
func (s *SocialService) ListReviews(ctx context.Context, buildID string) ([]entity.BuildReview, error) {
	if _, err := s.existingBuild(ctx, buildID); err != nil {
		return nil, err
	}
	reviews, err := s.social.ListReviews(ctx, buildID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *SocialService) existingBuild(ctx context.Context, buildID string) (*entity.Build, error) {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find build: %w", err)
	}
	return build, nil
}

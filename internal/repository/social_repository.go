package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialRepository owns the per-(user, build) facts: favorites, ratings and
// reviews. Ratings and reviews are written as single-statement upserts keyed
// on the unique pair so concurrent submissions cannot race into duplicates.
type SocialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) *SocialRepository {
	return &SocialRepository{db: db}
}

// ToggleFavorite flips the favorite fact and returns the new state.
func (r *SocialRepository) ToggleFavorite(ctx context.Context, buildID, userID string) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("build_id = ? AND user_id = ?", buildID, userID).
			Delete(&entity.FavoriteBuild{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}
		fav := &entity.FavoriteBuild{
			ID:        generateID(),
			BuildID:   buildID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(fav).Error; err != nil {
			return translateError(err)
		}
		favorited = true
		return nil
	})
	return favorited, err
}

// IsFavorite reports whether the pair exists.
func (r *SocialRepository) IsFavorite(ctx context.Context, buildID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.FavoriteBuild{}).
		Where("build_id = ? AND user_id = ?", buildID, userID).
		Count(&count).Error
	return count > 0, err
}

// UpsertRating inserts the pair's rating or overwrites its value.
func (r *SocialRepository) UpsertRating(ctx context.Context, buildID, userID string, value int) error {
	now := time.Now()
	rating := &entity.BuildRating{
		ID:        generateID(),
		BuildID:   buildID,
		UserID:    userID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "build_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"value": value, "updated_at": now}),
		}).
		Create(rating).Error
}

// FindRating returns the pair's rating, ErrNotFound when absent.
func (r *SocialRepository) FindRating(ctx context.Context, buildID, userID string) (*entity.BuildRating, error) {
	var rating entity.BuildRating
	err := r.db.WithContext(ctx).
		Where("build_id = ? AND user_id = ?", buildID, userID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rating, nil
}

// RatingStats returns the arithmetic mean and count of a build's ratings.
// Zero ratings yield (0, 0); neutral-display defaults are a presentation
// concern.
func (r *SocialRepository) RatingStats(ctx context.Context, buildID string) (float64, int64, error) {
	var stats struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.BuildRating{}).
		Select("COALESCE(AVG(CAST(value AS REAL)), 0) AS average, COUNT(*) AS count").
		Where("build_id = ?", buildID).
		Scan(&stats).Error
	return stats.Average, stats.Count, err
}

// UpsertReview inserts the pair's review or replaces its content in place.
func (r *SocialRepository) UpsertReview(ctx context.Context, buildID, userID, content string) error {
	now := time.Now()
	review := &entity.BuildReview{
		ID:        generateID(),
		BuildID:   buildID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "build_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"content": content, "updated_at": now}),
		}).
		Create(review).Error
}

// FindReview returns the pair's review, ErrNotFound when absent.
func (r *SocialRepository) FindReview(ctx context.Context, buildID, userID string) (*entity.BuildReview, error) {
	var review entity.BuildReview
	err := r.db.WithContext(ctx).
		Where("build_id = ? AND user_id = ?", buildID, userID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// ListReviews returns a build's reviews with their authors, newest first.
func (r *SocialRepository) ListReviews(ctx context.Context, buildID string) ([]entity.BuildReview, error) {
	var reviews []entity.BuildReview
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("build_id = ?", buildID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// CountRatings returns the number of rating rows for a build.
func (r *SocialRepository) CountRatings(ctx context.Context, buildID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.BuildRating{}).
		Where("build_id = ?", buildID).
		Count(&count).Error
	return count, err
}

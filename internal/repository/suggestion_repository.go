package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"gorm.io/gorm"
)

// SuggestionRepository owns user-submitted component suggestions.
type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Create(ctx context.Context, s *entity.ComponentSuggestion) error {
	now := time.Now()
	if s.ID == "" {
		s.ID = generateID()
	}
	s.Status = entity.SuggestionStatusPending
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SuggestionRepository) FindByID(ctx context.Context, id string) (*entity.ComponentSuggestion, error) {
	var s entity.ComponentSuggestion
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns suggestions, optionally narrowed to one status, newest first.
func (r *SuggestionRepository) List(ctx context.Context, status string, page, pageSize int) ([]entity.ComponentSuggestion, int64, error) {
	var suggestions []entity.ComponentSuggestion
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ComponentSuggestion{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&suggestions).Error
	return suggestions, total, err
}

// SetStatus records the moderation verdict together with the acting admin
// and an optional comment.
func (r *SuggestionRepository) SetStatus(ctx context.Context, id, adminID, status, comment string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.ComponentSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"admin_id":      adminID,
			"admin_comment": comment,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

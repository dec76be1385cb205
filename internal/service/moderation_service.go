package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/typereg"
)

// ModerationService owns the two admin workflows: build approval and
// component-suggestion review. Admin privilege is checked at the route
// layer; the acting admin id is still recorded on suggestions.
type ModerationService struct {
	builds      *repository.BuildRepository
	suggestions *repository.SuggestionRepository
}

func NewModerationService(builds *repository.BuildRepository, suggestions *repository.SuggestionRepository) *ModerationService {
	return &ModerationService{builds: builds, suggestions: suggestions}
}

// SetBuildApprovalRequest carries the verdict. Reason is transient response
// text for rejections and is deliberately never persisted.
type SetBuildApprovalRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// CreateSuggestionRequest is the user-facing submission.
type CreateSuggestionRequest struct {
	Link          string `json:"link" binding:"required"`
	Description   string `json:"description"`
	ComponentType string `json:"component_type" binding:"required"`
}

// SetSuggestionStatusRequest is the admin verdict on a suggestion.
type SetSuggestionStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	AdminComment string `json:"admin_comment"`
}

// SetBuildApproval flips the moderation flag on a submitted build.
func (s *ModerationService) SetBuildApproval(ctx context.Context, buildID string, approved bool) error {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find build: %w", err)
	}
	if build.Status != entity.BuildStatusSubmitted {
		return fmt.Errorf("%w: only submitted builds can be moderated", ErrValidation)
	}
	if err := s.builds.SetApproval(ctx, buildID, approved); err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

// CreateSuggestion records a new pending suggestion for the user.
func (s *ModerationService) CreateSuggestion(ctx context.Context, userID string, req *CreateSuggestionRequest) (*entity.ComponentSuggestion, error) {
	if !typereg.IsKnownType(req.ComponentType) {
		return nil, fmt.Errorf("%w: unknown component type %q", ErrValidation, req.ComponentType)
	}

	suggestion := &entity.ComponentSuggestion{
		UserID:        userID,
		Link:          req.Link,
		Description:   req.Description,
		ComponentType: req.ComponentType,
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}
	return suggestion, nil
}

// ListSuggestions returns suggestions, optionally narrowed by status.
func (s *ModerationService) ListSuggestions(ctx context.Context, status string, page, pageSize int) ([]entity.ComponentSuggestion, int64, error) {
	if status != "" && status != entity.SuggestionStatusPending &&
		status != entity.SuggestionStatusApproved && status != entity.SuggestionStatusRejected {
		return nil, 0, fmt.Errorf("%w: unknown suggestion status %q", ErrValidation, status)
	}
	return s.suggestions.List(ctx, status, page, pageSize)
}

// SetSuggestionStatus records the admin verdict. The transition is expected
// to happen once from pending, but re-invocation on a terminal suggestion is
// not blocked at this layer, so callers must not rely on idempotency.
func (s *ModerationService) SetSuggestionStatus(ctx context.Context, adminID, suggestionID string, req *SetSuggestionStatusRequest) (*entity.ComponentSuggestion, error) {
	if req.Status != entity.SuggestionStatusApproved && req.Status != entity.SuggestionStatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	if err := s.suggestions.SetStatus(ctx, suggestionID, adminID, req.Status, req.AdminComment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set suggestion status: %w", err)
	}
	return s.suggestions.FindByID(ctx, suggestionID)
}

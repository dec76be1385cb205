package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
)

// BuildService owns the build aggregate: assembly, pricing, lifecycle,
// cloning and the detail view.
type BuildService struct {
	builds     *repository.BuildRepository
	components *repository.ComponentRepository
	social     *repository.SocialRepository
}

func NewBuildService(builds *repository.BuildRepository, components *repository.ComponentRepository, social *repository.SocialRepository) *BuildService {
	return &BuildService{builds: builds, components: components, social: social}
}

// CreateBuildRequest opens a draft. Name is optional until submission.
type CreateBuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubmitBuildRequest finalizes a draft; the name becomes mandatory here.
type SubmitBuildRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RatingStats carries the aggregate over a build's ratings. A build with no
// ratings has Count 0 and Average 0; presenting that as a neutral 5.0 is a
// display choice, not data.
type RatingStats struct {
	Average float64 `json:"average_rating"`
	Count   int64   `json:"rating_count"`
}

// BuildDetails is the aggregate view for one build.
type BuildDetails struct {
	Build      *entity.Build       `json:"build"`
	Stats      RatingStats         `json:"stats"`
	IsFavorite bool                `json:"is_favorite"`
	OwnRating  *entity.BuildRating `json:"own_rating,omitempty"`
	OwnReview  *entity.BuildReview `json:"own_review,omitempty"`
}

// Create opens a draft build for the user.
func (s *BuildService) Create(ctx context.Context, userID string, req *CreateBuildRequest) (*entity.Build, error) {
	build := &entity.Build{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      entity.BuildStatusDraft,
	}
	if err := s.builds.Create(ctx, build); err != nil {
		return nil, fmt.Errorf("create build: %w", err)
	}
	return build, nil
}

// Attach adds a component to an owned build and refreshes the total price.
func (s *BuildService) Attach(ctx context.Context, userID, buildID, componentID string) (*entity.Build, error) {
	if _, err := s.ownedBuild(ctx, userID, buildID); err != nil {
		return nil, err
	}
	exists, err := s.components.Exists(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("check component: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	if err := s.builds.Attach(ctx, buildID, componentID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyAttached
		}
		return nil, fmt.Errorf("attach component: %w", err)
	}
	return s.builds.FindByID(ctx, buildID)
}

// Detach removes a component from an owned build and refreshes the total
// price. Detaching a pair that is not attached is a reported no-op failure.
func (s *BuildService) Detach(ctx context.Context, userID, buildID, componentID string) (*entity.Build, error) {
	if _, err := s.ownedBuild(ctx, userID, buildID); err != nil {
		return nil, err
	}

	if err := s.builds.Detach(ctx, buildID, componentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAttached
		}
		return nil, fmt.Errorf("detach component: %w", err)
	}
	return s.builds.FindByID(ctx, buildID)
}

// Submit moves Draft to Submitted. There is no path back to Draft, and
// approval decisions belong to moderation.
func (s *BuildService) Submit(ctx context.Context, userID, buildID string, req *SubmitBuildRequest) (*entity.Build, error) {
	build, err := s.ownedBuild(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	if build.Status != entity.BuildStatusDraft {
		return nil, fmt.Errorf("%w: build already submitted", ErrValidation)
	}

	build.Name = req.Name
	if req.Description != "" {
		build.Description = req.Description
	}
	build.Status = entity.BuildStatusSubmitted
	build.IsApproved = false

	if err := s.builds.Update(ctx, build); err != nil {
		return nil, fmt.Errorf("submit build: %w", err)
	}
	return build, nil
}

// Delete removes an owned build with all its child rows. It is the cleanup
// call client lifecycle hooks use for abandoned drafts; a missing build
// reports not-found and the caller's retry path may ignore that.
func (s *BuildService) Delete(ctx context.Context, userID, buildID string) error {
	if _, err := s.ownedBuild(ctx, userID, buildID); err != nil {
		return err
	}
	if err := s.builds.Delete(ctx, buildID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete build: %w", err)
	}
	return nil
}

// Clone copies a build's identity-free parts into a new draft owned by the
// requester: components and price yes, approval and social rows no.
func (s *BuildService) Clone(ctx context.Context, userID, sourceID string) (*entity.Build, error) {
	source, err := s.builds.FindByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find source build: %w", err)
	}

	name := source.Name
	if name == "" {
		name = "Untitled"
	}
	clone, err := s.builds.Clone(ctx, source, userID, name+" (copy)")
	if err != nil {
		return nil, fmt.Errorf("clone build: %w", err)
	}
	return clone, nil
}

// Details assembles the aggregate view. viewerID may be empty for anonymous
// readers; viewer-specific fields stay zero then.
func (s *BuildService) Details(ctx context.Context, buildID, viewerID string) (*BuildDetails, error) {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find build: %w", err)
	}

	average, count, err := s.social.RatingStats(ctx, buildID)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}

	details := &BuildDetails{
		Build: build,
		Stats: RatingStats{Average: average, Count: count},
	}

	if viewerID != "" {
		if details.IsFavorite, err = s.social.IsFavorite(ctx, buildID, viewerID); err != nil {
			return nil, fmt.Errorf("favorite lookup: %w", err)
		}
		if rating, err := s.social.FindRating(ctx, buildID, viewerID); err == nil {
			details.OwnRating = rating
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("rating lookup: %w", err)
		}
		if review, err := s.social.FindReview(ctx, buildID, viewerID); err == nil {
			details.OwnReview = review
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("review lookup: %w", err)
		}
	}

	return details, nil
}

// ListOwn returns the caller's builds.
func (s *BuildService) ListOwn(ctx context.Context, userID string) ([]entity.Build, error) {
	return s.builds.ListByUser(ctx, userID)
}

// ListApproved returns publicly browsable builds.
func (s *BuildService) ListApproved(ctx context.Context, page, pageSize int) ([]entity.Build, int64, error) {
	return s.builds.ListApproved(ctx, page, pageSize)
}

// ListTopRated returns the ranked listing; builds without ratings are not
// ranked at all.
func (s *BuildService) ListTopRated(ctx context.Context, limit int) ([]entity.Build, error) {
	return s.builds.ListTopRated(ctx, limit)
}

// Export renders a build's parts list as an XLSX workbook.
func (s *BuildService) Export(ctx context.Context, buildID string) (*excelize.File, error) {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find build: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Parts"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Brand", "Type", "Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, item := range build.Items {
		if item.Component == nil {
			continue
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Component.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Component.Brand)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Component.Type)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Component.Price.String())
		row++
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), build.TotalPrice.String())

	return f, nil
}

// ownedBuild loads a build and enforces ownership. Non-owners get
// ErrForbidden, which the surface layer reports exactly like not-found.
func (s *BuildService) ownedBuild(ctx context.Context, userID, buildID string) (*entity.Build, error) {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find build: %w", err)
	}
	if build.UserID != userID {
		return nil, ErrForbidden
	}
	return build, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BuildRepository owns builds and their attached-component rows. Attach,
// detach, clone and delete are transactional so the denormalized total price
// and the child rows can never drift apart.
type BuildRepository struct {
	db *gorm.DB
}

func NewBuildRepository(db *gorm.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

func (r *BuildRepository) Create(ctx context.Context, build *entity.Build) error {
	now := time.Now()
	if build.ID == "" {
		build.ID = generateID()
	}
	build.CreatedAt = now
	build.UpdatedAt = now
	return r.db.WithContext(ctx).Create(build).Error
}

// FindByID returns the build with its items and each item's component.
func (r *BuildRepository) FindByID(ctx context.Context, id string) (*entity.Build, error) {
	var build entity.Build
	err := r.db.WithContext(ctx).
		Preload("Items.Component").
		Preload("Owner").
		Where("id = ?", id).
		First(&build).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &build, nil
}

// ListByUser returns a user's builds, newest first.
func (r *BuildRepository) ListByUser(ctx context.Context, userID string) ([]entity.Build, error) {
	var builds []entity.Build
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&builds).Error
	return builds, err
}

// ListApproved returns moderated-approved, submitted builds.
func (r *BuildRepository) ListApproved(ctx context.Context, page, pageSize int) ([]entity.Build, int64, error) {
	var builds []entity.Build
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.Build{}).
		Where("status = ? AND is_approved = ?", entity.BuildStatusSubmitted, true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&builds).Error
	return builds, total, err
}

// ListTopRated orders builds by descending mean rating. Inner-join
// semantics: builds without a single rating do not appear at all.
func (r *BuildRepository) ListTopRated(ctx context.Context, limit int) ([]entity.Build, error) {
	var builds []entity.Build
	err := r.db.WithContext(ctx).
		Model(&entity.Build{}).
		Joins("JOIN build_ratings ON build_ratings.build_id = builds.id").
		Where("builds.status = ?", entity.BuildStatusSubmitted).
		Group("builds.id").
		Order("AVG(CAST(build_ratings.value AS REAL)) DESC").
		Limit(limit).
		Find(&builds).Error
	return builds, err
}

// Attach adds one component to a build and recomputes the total price in the
// same transaction. A duplicate pair surfaces ErrDuplicate, whether caught by
// the pre-check or by the unique index under a race.
func (r *BuildRepository) Attach(ctx context.Context, buildID, componentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.BuildComponent{}).
			Where("build_id = ? AND component_id = ?", buildID, componentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}

		item := &entity.BuildComponent{
			ID:          generateID(),
			BuildID:     buildID,
			ComponentID: componentID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(item).Error; err != nil {
			return translateError(err)
		}
		return r.recomputeTotal(tx, buildID)
	})
}

// Detach removes one attached component and recomputes the total price.
// An absent pair surfaces ErrNotFound.
func (r *BuildRepository) Detach(ctx context.Context, buildID, componentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("build_id = ? AND component_id = ?", buildID, componentID).
			Delete(&entity.BuildComponent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return r.recomputeTotal(tx, buildID)
	})
}

// recomputeTotal sums attached component prices in Go with decimal
// arithmetic and writes the denormalized column.
func (r *BuildRepository) recomputeTotal(tx *gorm.DB, buildID string) error {
	var prices []decimal.Decimal
	err := tx.Model(&entity.Component{}).
		Joins("JOIN build_components ON build_components.component_id = components.id").
		Where("build_components.build_id = ?", buildID).
		Pluck("components.price", &prices).Error
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}

	return tx.Model(&entity.Build{}).
		Where("id = ?", buildID).
		Updates(map[string]interface{}{
			"total_price": total,
			"updated_at":  time.Now(),
		}).Error
}

// Update persists name/description/status edits.
func (r *BuildRepository) Update(ctx context.Context, build *entity.Build) error {
	build.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(build).Error
}

// SetApproval flips the moderation flag.
func (r *BuildRepository) SetApproval(ctx context.Context, buildID string, approved bool) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Build{}).
		Where("id = ?", buildID).
		Updates(map[string]interface{}{
			"is_approved": approved,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a build and every child row referencing it. Children are
// deleted explicitly so the cascade holds on stores where FK enforcement is
// off.
func (r *BuildRepository) Delete(ctx context.Context, buildID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var build entity.Build
		if err := tx.Where("id = ?", buildID).First(&build).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		for _, child := range []interface{}{
			&entity.BuildComponent{},
			&entity.FavoriteBuild{},
			&entity.BuildRating{},
			&entity.BuildReview{},
		} {
			if err := tx.Where("build_id = ?", buildID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&build).Error
	})
}

// Clone copies a build and all its attached-component rows into a new build
// owned by ownerID, inside one transaction. Approval is reset; social rows
// are not copied.
func (r *BuildRepository) Clone(ctx context.Context, source *entity.Build, ownerID, name string) (*entity.Build, error) {
	now := time.Now()
	clone := &entity.Build{
		ID:          generateID(),
		UserID:      ownerID,
		Name:        name,
		Description: source.Description,
		TotalPrice:  source.TotalPrice,
		Status:      entity.BuildStatusDraft,
		IsApproved:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clone).Error; err != nil {
			return err
		}
		var items []entity.BuildComponent
		if err := tx.Where("build_id = ?", source.ID).Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = generateID()
			items[i].BuildID = clone.ID
			items[i].CreatedAt = now
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// CountItems returns the number of attached components.
func (r *BuildRepository) CountItems(ctx context.Context, buildID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.BuildComponent{}).
		Where("build_id = ?", buildID).
		Count(&count).Error
	return count, err
}

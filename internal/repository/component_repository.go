package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComponentRepository owns the component base rows, their type-extension rows
// and the multi-valued group rows.
type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// ComponentFilters narrows a catalog listing. Zero values mean "no filter".
type ComponentFilters struct {
	Type     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Brands   []string
	Query    string
	Sort     string // "" = price desc, "price_asc", "name"
}

// Create inserts the base row, the spec row and all group rows atomically.
// A failure on any step rolls the whole creation back so no orphan base row
// can remain.
func (r *ComponentRepository) Create(ctx context.Context, comp *entity.Component, spec *entity.ComponentSpec, groups []entity.SpecGroupValue) error {
	now := time.Now()
	if comp.ID == "" {
		comp.ID = generateID()
	}
	comp.CreatedAt = now
	comp.UpdatedAt = now
	spec.ComponentID = comp.ID
	spec.CreatedAt = now
	spec.UpdatedAt = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comp).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Create(spec).Error; err != nil {
			return translateError(err)
		}
		for i := range groups {
			groups[i].ID = generateID()
			groups[i].ComponentID = comp.ID
		}
		if len(groups) > 0 {
			if err := tx.Create(&groups).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// FindByID returns the fully joined record: base + spec + group rows.
// An absent id yields ErrNotFound, never a partial record.
func (r *ComponentRepository) FindByID(ctx context.Context, id string) (*entity.Component, error) {
	var comp entity.Component
	err := r.db.WithContext(ctx).
		Preload("Spec").
		Preload("GroupValues").
		Where("id = ?", id).
		First(&comp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comp, nil
}

// List returns base-level fields only, for browsing. Default ordering is
// price descending.
func (r *ComponentRepository) List(ctx context.Context, page, pageSize int, f ComponentFilters) ([]entity.Component, int64, error) {
	var components []entity.Component
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Component{})

	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", f.MaxPrice)
	}
	if len(f.Brands) > 0 {
		query = query.Where("brand IN ?", f.Brands)
	}
	if f.Query != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "price_asc":
		query = query.Order("price ASC")
	case "name":
		query = query.Order("name ASC")
	default:
		query = query.Order("price DESC")
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&components).Error
	return components, total, err
}

// Update persists base-level edits. The spec row is never repointed.
func (r *ComponentRepository) Update(ctx context.Context, comp *entity.Component) error {
	comp.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.Component{}).
		Where("id = ?", comp.ID).
		Updates(map[string]interface{}{
			"name":       comp.Name,
			"brand":      comp.Brand,
			"price":      comp.Price,
			"image_url":  comp.ImageURL,
			"updated_at": comp.UpdatedAt,
		}).Error
}

// Exists reports whether a component id is present.
func (r *ComponentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Component{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

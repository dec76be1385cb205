package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/typereg"
)

const componentListCacheKey = "components:list"

// CatalogService owns the component catalog: validated creation, detail
// fetch and filtered browsing.
type CatalogService struct {
	repo *repository.ComponentRepository
	rdb  *redis.Client
}

func NewCatalogService(repo *repository.ComponentRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{repo: repo, rdb: rdb}
}

// CreateComponentRequest carries the base fields, the type tag and the raw
// attribute map. Multi-valued groups arrive inside Attributes as lists.
type CreateComponentRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Brand    string                 `json:"brand" binding:"required"`
	Price    decimal.Decimal        `json:"price" binding:"required"`
	ImageURL string                 `json:"image_url"`
	Type     string                 `json:"type" binding:"required"`
	Attrs    map[string]interface{} `json:"attrs" binding:"required"`
}

// UpdateComponentRequest edits base-level fields only; type and the spec row
// are immutable after creation.
type UpdateComponentRequest struct {
	Name     string           `json:"name"`
	Brand    string           `json:"brand"`
	Price    *decimal.Decimal `json:"price"`
	ImageURL string           `json:"image_url"`
}

// ListComponentsQuery mirrors the browse filters.
type ListComponentsQuery struct {
	Type     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Brands   []string
	Query    string
	Sort     string
	Page     int
	PageSize int
}

// ComponentListResult pages base-level component summaries.
type ComponentListResult struct {
	Items      []entity.Component `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// Create validates the attribute map against the type registry and performs
// the atomic base + spec + group insert. Registry failures come back wrapped
// in ErrValidation.
func (s *CatalogService) Create(ctx context.Context, req *CreateComponentRequest) (*entity.Component, error) {
	if err := typereg.Validate(req.Type, req.Attrs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}

	// Split the raw map: group keys become child rows, everything else is
	// the scalar spec.
	groupKeys := typereg.Groups(req.Type)
	attrs := make(entity.JSONB, len(req.Attrs))
	var groups []entity.SpecGroupValue
	for k, v := range req.Attrs {
		if isGroupKey(groupKeys, k) {
			for _, gv := range toStringSlice(v) {
				groups = append(groups, entity.SpecGroupValue{GroupKey: k, Value: gv})
			}
			continue
		}
		attrs[k] = v
	}

	comp := &entity.Component{
		Name:     req.Name,
		Brand:    req.Brand,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		Type:     req.Type,
	}
	spec := &entity.ComponentSpec{Attrs: attrs}

	if err := s.repo.Create(ctx, comp, spec, groups); err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}

	s.clearCache(ctx)
	return comp, nil
}

// Get returns the fully joined record.
func (s *CatalogService) Get(ctx context.Context, id string) (*entity.Component, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find component: %w", err)
	}
	return comp, nil
}

// List returns base-level summaries; an empty page is a valid result.
func (s *CatalogService) List(ctx context.Context, q *ListComponentsQuery) (*ComponentListResult, error) {
	if q.Type != "" && !typereg.IsKnownType(q.Type) {
		return nil, fmt.Errorf("%w: unknown component type %q", ErrValidation, q.Type)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	components, total, err := s.repo.List(ctx, q.Page, q.PageSize, repository.ComponentFilters{
		Type:     q.Type,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Brands:   q.Brands,
		Query:    q.Query,
		Sort:     q.Sort,
	})
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}
	return &ComponentListResult{
		Items:      components,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update edits name/brand/price/image. The component type is immutable.
func (s *CatalogService) Update(ctx context.Context, id string, req *UpdateComponentRequest) (*entity.Component, error) {
	comp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		comp.Name = req.Name
	}
	if req.Brand != "" {
		comp.Brand = req.Brand
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
		}
		comp.Price = *req.Price
	}
	if req.ImageURL != "" {
		comp.ImageURL = req.ImageURL
	}

	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}

	s.clearCache(ctx)
	return comp, nil
}

func (s *CatalogService) clearCache(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, componentListCacheKey)
	}
}

func isGroupKey(groupKeys []string, key string) bool {
	for _, g := range groupKeys {
		if g == key {
			return true
		}
	}
	return false
}

func toStringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nkvtd/pc-forge/internal/service"
)

// CatalogHandler serves the component catalog routes.
type CatalogHandler struct {
	svc *service.CatalogService
	img *service.ImageService
}

func NewCatalogHandler(svc *service.CatalogService, img *service.ImageService) *CatalogHandler {
	return &CatalogHandler{svc: svc, img: img}
}

// List returns a filtered, sorted page of components.
func (h *CatalogHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	q := &service.ListComponentsQuery{
		Type:     c.Query("type"),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			BadRequest(c, "Invalid min_price")
			return
		}
		q.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			BadRequest(c, "Invalid max_price")
			return
		}
		q.MaxPrice = &v
	}
	if raw := c.Query("brands"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				q.Brands = append(q.Brands, b)
			}
		}
	}

	result, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, result)
}

// Get returns one component with its full spec.
func (h *CatalogHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Component ID is required")
		return
	}

	component, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "Component not found")
		return
	}

	Success(c, component)
}

// Create registers a new component. Admin only.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req service.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	component, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Created(c, component)
}

// Update changes base fields of a component. Admin only.
func (h *CatalogHandler) Update(c *gin.Context) {
	var req service.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	component, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			NotFound(c, "Component not found")
		case errors.Is(err, service.ErrValidation):
			BadRequest(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}

	Success(c, component)
}

// UploadImage stores a component image and returns its URL. Admin only.
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		BadRequest(c, "Only image uploads are accepted")
		return
	}

	url, err := h.img.Upload(c.Request.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, service.ErrStorageUnavailable) {
			Error(c, 50300, "Image storage is not configured")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"url": url})
}

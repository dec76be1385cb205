package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nkvtd/pc-forge/internal/service"
)

// BuildHandler serves the build lifecycle routes.
type BuildHandler struct {
	svc *service.BuildService
}

func NewBuildHandler(svc *service.BuildService) *BuildHandler {
	return &BuildHandler{svc: svc}
}

// Create opens a new draft build for the caller.
func (h *BuildHandler) Create(c *gin.Context) {
	var req service.CreateBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	build, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Created(c, build)
}

// ListOwn returns the caller's builds, drafts included.
func (h *BuildHandler) ListOwn(c *gin.Context) {
	builds, err := h.svc.ListOwn(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": builds})
}

// ListApproved returns the public gallery of approved builds.
func (h *BuildHandler) ListApproved(c *gin.Context) {
	page, pageSize := GetPagination(c)

	builds, total, err := h.svc.ListApproved(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"items":     builds,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListTopRated returns builds ranked by average rating.
func (h *BuildHandler) ListTopRated(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	builds, err := h.svc.ListTopRated(c.Request.Context(), limit)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": builds})
}

// Get returns the aggregate build view. Works for anonymous readers too.
func (h *BuildHandler) Get(c *gin.Context) {
	details, err := h.svc.Details(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "Build not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, details)
}

// Attach adds a component to the caller's build.
func (h *BuildHandler) Attach(c *gin.Context) {
	build, err := h.svc.Attach(c.Request.Context(), GetUserID(c), c.Param("id"), c.Param("componentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, build)
}

// Detach removes a component from the caller's build.
func (h *BuildHandler) Detach(c *gin.Context) {
	build, err := h.svc.Detach(c.Request.Context(), GetUserID(c), c.Param("id"), c.Param("componentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, build)
}

// Submit finalizes a draft for moderation.
func (h *BuildHandler) Submit(c *gin.Context) {
	var req service.SubmitBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	build, err := h.svc.Submit(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, build)
}

// Delete removes the caller's build and everything hanging off it.
func (h *BuildHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, gin.H{"message": "Build deleted"})
}

// Clone copies a build into a fresh draft owned by the caller.
func (h *BuildHandler) Clone(c *gin.Context) {
	build, err := h.svc.Clone(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Created(c, build)
}

// Export streams the build's parts list as an XLSX download.
func (h *BuildHandler) Export(c *gin.Context) {
	f, err := h.svc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	fileName := fmt.Sprintf("build_%s.xlsx", c.Param("id"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, err.Error())
	}
}

// writeError maps service errors onto the envelope. Forbidden is reported
// exactly like not-found so build existence never leaks to non-owners.
func (h *BuildHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		NotFound(c, "Build not found")
	case errors.Is(err, service.ErrAlreadyAttached):
		BadRequest(c, "Component already in build")
	case errors.Is(err, service.ErrNotAttached):
		BadRequest(c, "Component not in build")
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

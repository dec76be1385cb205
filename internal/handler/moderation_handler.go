package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nkvtd/pc-forge/internal/service"
)

// ModerationHandler serves build approval and component suggestions.
type ModerationHandler struct {
	svc *service.ModerationService
}

func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// SetBuildApproval records the admin verdict on a submitted build. The
// rejection reason is echoed back but never stored.
func (h *ModerationHandler) SetBuildApproval(c *gin.Context) {
	var req service.SetBuildApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetBuildApproval(c.Request.Context(), c.Param("id"), req.Approved); err != nil {
		h.writeError(c, err, "Build not found")
		return
	}

	Success(c, gin.H{
		"approved": req.Approved,
		"reason":   req.Reason,
	})
}

// CreateSuggestion files a new component suggestion for the caller.
func (h *ModerationHandler) CreateSuggestion(c *gin.Context) {
	var req service.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	suggestion, err := h.svc.CreateSuggestion(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "Suggestion not found")
		return
	}

	Created(c, suggestion)
}

// ListSuggestions returns suggestions, optionally filtered by status. Admin
// only.
func (h *ModerationHandler) ListSuggestions(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListSuggestions(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		h.writeError(c, err, "Suggestion not found")
		return
	}

	Success(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SetSuggestionStatus records the admin verdict on a suggestion.
func (h *ModerationHandler) SetSuggestionStatus(c *gin.Context) {
	var req service.SetSuggestionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	suggestion, err := h.svc.SetSuggestionStatus(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err, "Suggestion not found")
		return
	}

	Success(c, suggestion)
}

func (h *ModerationHandler) writeError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, notFoundMsg)
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

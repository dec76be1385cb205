package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nkvtd/pc-forge/internal/service"
)

// SocialHandler serves favorites, ratings and reviews.
type SocialHandler struct {
	svc *service.SocialService
}

func NewSocialHandler(svc *service.SocialService) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// ToggleFavorite flips the caller's favorite on a build.
func (h *SocialHandler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.svc.ToggleFavorite(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, gin.H{"favorited": favorited})
}

// Rate sets or replaces the caller's rating on a build.
func (h *SocialHandler) Rate(c *gin.Context) {
	var req struct {
		Value int `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetRating(c.Request.Context(), GetUserID(c), c.Param("id"), req.Value); err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, gin.H{"message": "Rating saved"})
}

// Review sets or replaces the caller's review on a build.
func (h *SocialHandler) Review(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetReview(c.Request.Context(), GetUserID(c), c.Param("id"), req.Content); err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, gin.H{"message": "Review saved"})
}

// ListReviews returns all reviews on a build with their authors.
func (h *SocialHandler) ListReviews(c *gin.Context) {
	reviews, err := h.svc.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, gin.H{"items": reviews})
}

// Stats returns the rating average and count for a build.
func (h *SocialHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	Success(c, stats)
}

func (h *SocialHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, "Build not found")
	case errors.Is(err, service.ErrSelfRating):
		BadRequest(c, "You cannot rate or review your own build")
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

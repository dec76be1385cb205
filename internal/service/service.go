package service

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/nkvtd/pc-forge/internal/config"
	"github.com/nkvtd/pc-forge/internal/repository"
)

// Business error taxonomy. Handlers map these onto the response envelope;
// per policy, ErrForbidden is surfaced to clients exactly like ErrNotFound
// so "doesn't exist" and "not yours" stay indistinguishable.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyAttached = errors.New("component already attached")
	ErrNotAttached     = errors.New("component not attached")
	ErrSelfRating      = errors.New("cannot rate own build")
	ErrValidation      = errors.New("validation failed")
)

// Services groups the business layer.
type Services struct {
	Auth       *AuthService
	Catalog    *CatalogService
	Build      *BuildService
	Social     *SocialService
	Moderation *ModerationService
	Image      *ImageService
}

// NewServices wires all services. rdb and MinIO are optional collaborators;
// with them absent the catalog skips cache invalidation and image upload
// reports unavailable.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			minioClient = nil
		}
	}

	buildSvc := NewBuildService(repos.Build, repos.Component, repos.Social)
	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		Catalog:    NewCatalogService(repos.Component, rdb),
		Build:      buildSvc,
		Social:     NewSocialService(repos.Social, repos.Build),
		Moderation: NewModerationService(repos.Build, repos.Suggestion),
		Image:      NewImageService(minioClient, cfg.MinIO.Bucket),
	}
}

// canRate is the single authorization predicate for ratings and reviews:
// a viewer may rate any build except their own.
func canRate(viewerID, buildOwnerID string) bool {
	return viewerID != "" && viewerID != buildOwnerID
}

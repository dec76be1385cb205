package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// generateID returns a 32-char dash-stripped uuid.
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// Repositories groups all data-access objects.
type Repositories struct {
	User       *UserRepository
	Component  *ComponentRepository
	Build      *BuildRepository
	Social     *SocialRepository
	Suggestion *SuggestionRepository
}

// NewRepositories wires every repository onto one shared handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Component:  NewComponentRepository(db),
		Build:      NewBuildRepository(db),
		Social:     NewSocialRepository(db),
		Suggestion: NewSuggestionRepository(db),
	}
}

// translateError maps driver-level errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	// Uniqueness failures surface differently per driver; match the
	// constraint-violation text from postgres and sqlite.
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Build lifecycle status.
const (
	BuildStatusDraft     = "draft"
	BuildStatusSubmitted = "submitted"
)

// Build is a user-assembled parts list. TotalPrice is denormalized and
// recomputed inside the same transaction as every attach/detach.
type Build struct {
	ID          string          `json:"id" gorm:"primaryKey;size:32"`
	UserID      string          `json:"user_id" gorm:"size:32;not null;index"`
	Name        string          `json:"name" gorm:"size:128"`
	Description string          `json:"description" gorm:"type:text"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null;default:0"`
	Status      string          `json:"status" gorm:"size:16;not null;default:draft;check:status IN ('draft','submitted')"`
	IsApproved  bool            `json:"is_approved" gorm:"not null;default:false"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Owner *User            `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	Items []BuildComponent `json:"items,omitempty" gorm:"foreignKey:BuildID"`
}

func (Build) TableName() string {
	return "builds"
}

// BuildComponent joins a build to one attached component. The composite
// unique index rejects duplicate attachment of the identical component;
// several components of the same type remain allowed.
type BuildComponent struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	BuildID     string    `json:"build_id" gorm:"size:32;not null;uniqueIndex:idx_build_component"`
	ComponentID string    `json:"component_id" gorm:"size:32;not null;uniqueIndex:idx_build_component"`
	CreatedAt   time.Time `json:"created_at"`

	Build     *Build     `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
	Component *Component `json:"component,omitempty" gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
}

func (BuildComponent) TableName() string {
	return "build_components"
}

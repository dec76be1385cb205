package entity

import "time"

// Suggestion moderation status.
const (
	SuggestionStatusPending  = "pending"
	SuggestionStatusApproved = "approved"
	SuggestionStatusRejected = "rejected"
)

// ComponentSuggestion is a user-submitted request to add a new component to
// the catalog. It starts pending and is moved to a terminal status by an
// admin; the data layer does not block re-invocation on a terminal row.
type ComponentSuggestion struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	UserID        string    `json:"user_id" gorm:"size:32;not null;index"`
	AdminID       *string   `json:"admin_id" gorm:"size:32"`
	Link          string    `json:"link" gorm:"size:512;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	ComponentType string    `json:"component_type" gorm:"size:20;not null"`
	Status        string    `json:"status" gorm:"size:16;not null;default:pending;check:status IN ('pending','approved','rejected')"`
	AdminComment  string    `json:"admin_comment" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User  *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Admin *User `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
}

func (ComponentSuggestion) TableName() string {
	return "component_suggestions"
}

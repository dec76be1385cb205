package entity

import "time"

// FavoriteBuild marks a build as favorited by a user. Presence is the whole
// fact; toggling removes the row.
type FavoriteBuild struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	BuildID   string    `json:"build_id" gorm:"size:32;not null;uniqueIndex:idx_favorite_pair"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_favorite_pair"`
	CreatedAt time.Time `json:"created_at"`

	Build *Build `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (FavoriteBuild) TableName() string {
	return "favorite_builds"
}

// BuildRating is the single rating a user holds on a build. Re-rating
// overwrites via upsert on the unique pair.
type BuildRating struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	BuildID   string    `json:"build_id" gorm:"size:32;not null;uniqueIndex:idx_rating_pair"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_rating_pair"`
	Value     int       `json:"value" gorm:"not null;check:value >= 1 AND value <= 5"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Build *Build `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (BuildRating) TableName() string {
	return "build_ratings"
}

// BuildReview is a user's free-text review of a build, at most one per
// (user, build); re-submitting replaces the content.
type BuildReview struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	BuildID   string    `json:"build_id" gorm:"size:32;not null;uniqueIndex:idx_review_pair"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_review_pair"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Build *Build `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (BuildReview) TableName() string {
	return "build_reviews"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Slide struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Content  map[string]any `json:"content"`
}

// PersonalizedPresentation holds per-user slide content. The partial unique
// index keeps a single active row per user.
type PersonalizedPresentation struct {
	ID        uint                       `gorm:"primaryKey" json:"id"`
	UserID    uint                       `gorm:"not null;uniqueIndex:uniq_active_presentation,where:is_active = true" json:"user_id"`
	Title     string                     `json:"title"`
	Subtitle  string                     `json:"subtitle"`
	Slides    datatypes.JSONSlice[Slide] `json:"slides"`
	IsActive  bool                       `gorm:"index" json:"is_active"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

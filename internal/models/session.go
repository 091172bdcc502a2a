package models

import "time"

// LoginEvent is written on every successful authentication. SessionDurationSeconds
// stays nil while the session is open and is filled in by the logout call.
type LoginEvent struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UserID                 uint      `gorm:"index;not null" json:"user_id"`
	LoginTimestamp         time.Time `gorm:"index;not null" json:"login_timestamp"`
	SessionDurationSeconds *float64  `json:"session_duration_seconds"`
}

type LogoutEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	LogoutTimestamp time.Time `gorm:"not null" json:"logout_timestamp"`
	LoginEventID    *uint     `gorm:"index" json:"login_event_id"`
}

type PageVisit struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	PageName        string     `gorm:"size:255" json:"page_name"`
	EntryTime       time.Time  `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time"`
	DurationSeconds *float64   `json:"duration_seconds"`
}

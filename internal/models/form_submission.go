package models

import "time"

// FormSubmission is the feedback form. One row per user, never updated.
type FormSubmission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Feedback        string    `gorm:"type:text" json:"feedback"`
	Rating          int       `json:"rating"`
	Suggestions     *string   `gorm:"type:text" json:"suggestions"`
	SelectedOptions *string   `gorm:"type:text" json:"selected_options"`
	ContactName     *string   `json:"contact_name"`
	ContactEmail    *string   `json:"contact_email"`
	ContactPhone    *string   `json:"contact_phone"`
	ContactNotes    *string   `gorm:"type:text" json:"contact_notes"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

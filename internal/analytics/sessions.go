package analytics

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

// ErrNoActiveSession means the user has no login event with an open duration.
var ErrNoActiveSession = errors.New("no active session")

type LogoutResult struct {
	LoginEvent  models.LoginEvent
	LogoutEvent models.LogoutEvent
	// AlreadyClosed is set when a logout event already referenced the login
	// event and nothing new was written.
	AlreadyClosed bool
}

func RecordLogin(db *gorm.DB, userID uint, at time.Time) (models.LoginEvent, error) {
	ev := models.LoginEvent{UserID: userID, LoginTimestamp: at.UTC()}
	err := db.Create(&ev).Error
	return ev, err
}

// RecordLogout closes the user's most recent open session. The lookup, duration
// update and logout insert share one transaction.
func RecordLogout(db *gorm.DB, userID uint, now time.Time) (*LogoutResult, error) {
	now = now.UTC()
	var res LogoutResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var login models.LoginEvent
		err := tx.Where("user_id = ? AND session_duration_seconds IS NULL", userID).
			Order("login_timestamp DESC").
			Order("id DESC").
			First(&login).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveSession
		}
		if err != nil {
			return err
		}

		var existing models.LogoutEvent
		err = tx.Where("login_event_id = ?", login.ID).First(&existing).Error
		switch {
		case err == nil:
			d := SessionDuration(login, &existing, now)
			if err := tx.Model(&login).Update("session_duration_seconds", d).Error; err != nil {
				return err
			}
			login.SessionDurationSeconds = &d
			res = LogoutResult{LoginEvent: login, LogoutEvent: existing, AlreadyClosed: true}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		d := nonNegative(now.Sub(login.LoginTimestamp).Seconds())
		if err := tx.Model(&login).Update("session_duration_seconds", d).Error; err != nil {
			return err
		}
		login.SessionDurationSeconds = &d

		loginID := login.ID
		logout := models.LogoutEvent{UserID: userID, LogoutTimestamp: now, LoginEventID: &loginID}
		if err := tx.Create(&logout).Error; err != nil {
			return err
		}
		res = LogoutResult{LoginEvent: login, LogoutEvent: logout}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

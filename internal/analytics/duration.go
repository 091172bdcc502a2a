// Package analytics derives session durations and per-user activity summaries
// from login, logout and form submission rows.
package analytics

import (
	"sort"
	"time"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

// StaleSessionThreshold is the age after which an open session counts as abandoned.
const StaleSessionThreshold = 24 * time.Hour

// SessionDuration returns the elapsed seconds for a login event. A matched
// logout wins over a stored duration, which wins over the live value.
// Open sessions older than StaleSessionThreshold report zero.
func SessionDuration(login models.LoginEvent, logout *models.LogoutEvent, now time.Time) float64 {
	if logout != nil {
		return nonNegative(logout.LogoutTimestamp.Sub(login.LoginTimestamp).Seconds())
	}
	if login.SessionDurationSeconds != nil {
		return nonNegative(*login.SessionDurationSeconds)
	}
	live := now.Sub(login.LoginTimestamp)
	if live > StaleSessionThreshold {
		return 0
	}
	return nonNegative(live.Seconds())
}

// IsResolved reports whether a session has ended, either via a stored
// duration or a matched logout event.
func IsResolved(login models.LoginEvent, logout *models.LogoutEvent) bool {
	return login.SessionDurationSeconds != nil || logout != nil
}

type Session struct {
	LoginEventID           uint       `json:"login_event_id"`
	LoginTimestamp         time.Time  `json:"login_timestamp"`
	LogoutTimestamp        *time.Time `json:"logout_timestamp"`
	SessionDurationSeconds float64    `json:"session_duration_seconds"`
	Resolved               bool       `json:"resolved"`
	HasSubmittedForm       bool       `json:"has_submitted_form"`
}

type Summary struct {
	Sessions              []Session `json:"sessions"`
	TotalTimeSpentSeconds float64   `json:"total_time_spent_seconds"`
	TotalLogins           int       `json:"total_logins"`
	HasSubmittedForm      bool      `json:"has_submitted_form"`
}

// Summarize pairs each login with the logout that references it by
// login_event_id and totals the resolved sessions. Sessions come back newest first.
func Summarize(logins []models.LoginEvent, logouts []models.LogoutEvent, hasSubmitted bool, now time.Time) Summary {
	byLogin := make(map[uint]*models.LogoutEvent, len(logouts))
	for i := range logouts {
		lo := &logouts[i]
		if lo.LoginEventID == nil {
			continue
		}
		// keep the earliest logout if legacy data has more than one
		if prev, ok := byLogin[*lo.LoginEventID]; ok && !lo.LogoutTimestamp.Before(prev.LogoutTimestamp) {
			continue
		}
		byLogin[*lo.LoginEventID] = lo
	}

	ordered := make([]models.LoginEvent, len(logins))
	copy(ordered, logins)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].LoginTimestamp.Equal(ordered[j].LoginTimestamp) {
			return ordered[i].ID > ordered[j].ID
		}
		return ordered[i].LoginTimestamp.After(ordered[j].LoginTimestamp)
	})

	sum := Summary{
		Sessions:         make([]Session, 0, len(ordered)),
		TotalLogins:      len(ordered),
		HasSubmittedForm: hasSubmitted,
	}
	for _, login := range ordered {
		logout := byLogin[login.ID]
		d := SessionDuration(login, logout, now)
		resolved := IsResolved(login, logout)
		s := Session{
			LoginEventID:           login.ID,
			LoginTimestamp:         login.LoginTimestamp,
			SessionDurationSeconds: d,
			Resolved:               resolved,
			HasSubmittedForm:       hasSubmitted,
		}
		if logout != nil {
			ts := logout.LogoutTimestamp
			s.LogoutTimestamp = &ts
		}
		if resolved {
			sum.TotalTimeSpentSeconds += d
		}
		sum.Sessions = append(sum.Sessions, s)
	}
	return sum
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

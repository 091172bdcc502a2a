package analytics

import (
	"time"

	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

// Activity is every tracked row owned by a single user.
type Activity struct {
	User            models.User             `json:"user"`
	LoginEvents     []models.LoginEvent     `json:"login_events"`
	LogoutEvents    []models.LogoutEvent    `json:"logout_events"`
	PageVisits      []models.PageVisit      `json:"page_visits"`
	FormSubmissions []models.FormSubmission `json:"form_submissions"`
}

// LoadActivity fetches the owned rows of the given users with one query per
// table and groups them by user_id. The result keeps the order of users.
func LoadActivity(db *gorm.DB, users []models.User) ([]Activity, error) {
	out := make([]Activity, len(users))
	if len(users) == 0 {
		return out, nil
	}
	ids := make([]uint, len(users))
	index := make(map[uint]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
		out[i] = Activity{
			User:            u,
			LoginEvents:     []models.LoginEvent{},
			LogoutEvents:    []models.LogoutEvent{},
			PageVisits:      []models.PageVisit{},
			FormSubmissions: []models.FormSubmission{},
		}
	}

	var logins []models.LoginEvent
	if err := db.Where("user_id IN ?", ids).Order("login_timestamp DESC").Find(&logins).Error; err != nil {
		return nil, err
	}
	for _, ev := range logins {
		a := &out[index[ev.UserID]]
		a.LoginEvents = append(a.LoginEvents, ev)
	}

	var logouts []models.LogoutEvent
	if err := db.Where("user_id IN ?", ids).Order("logout_timestamp DESC").Find(&logouts).Error; err != nil {
		return nil, err
	}
	for _, ev := range logouts {
		a := &out[index[ev.UserID]]
		a.LogoutEvents = append(a.LogoutEvents, ev)
	}

	var visits []models.PageVisit
	if err := db.Where("user_id IN ?", ids).Order("entry_time DESC").Find(&visits).Error; err != nil {
		return nil, err
	}
	for _, v := range visits {
		a := &out[index[v.UserID]]
		a.PageVisits = append(a.PageVisits, v)
	}

	var subs []models.FormSubmission
	if err := db.Where("user_id IN ?", ids).Find(&subs).Error; err != nil {
		return nil, err
	}
	for _, s := range subs {
		a := &out[index[s.UserID]]
		a.FormSubmissions = append(a.FormSubmissions, s)
	}
	return out, nil
}

// Summary runs Summarize over the loaded rows.
func (a Activity) Summary(now time.Time) Summary {
	return Summarize(a.LoginEvents, a.LogoutEvents, len(a.FormSubmissions) > 0, now)
}

package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/analytics"
	"github.com/zaqqye/presentation_analytics/internal/models"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Log *slog.Logger
	Now func() time.Time
}

type simplifiedUserAnalytics struct {
	User models.User `json:"user"`
	analytics.Summary
}

// UserAnalytics returns every tracked row for every user.
func (ac *AnalyticsController) UserAnalytics(c *gin.Context) {
	acts, ok := ac.loadAll(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, acts)
}

// SimplifiedAnalytics returns per-user session summaries.
func (ac *AnalyticsController) SimplifiedAnalytics(c *gin.Context) {
	acts, ok := ac.loadAll(c)
	if !ok {
		return
	}
	now := nowFrom(ac.Now)
	out := make([]simplifiedUserAnalytics, 0, len(acts))
	for _, a := range acts {
		out = append(out, simplifiedUserAnalytics{User: a.User, Summary: a.Summary(now)})
	}
	c.JSON(http.StatusOK, out)
}

// MyAnalytics returns the caller's own rows and session summary.
func (ac *AnalyticsController) MyAnalytics(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	acts, err := analytics.LoadActivity(ac.DB, []models.User{user})
	if err != nil {
		internalError(c, ac.Log, err)
		return
	}
	a := acts[0]
	var sub *models.FormSubmission
	if len(a.FormSubmissions) > 0 {
		sub = &a.FormSubmissions[0]
	}
	c.JSON(http.StatusOK, gin.H{
		"user":            a.User,
		"login_events":    a.LoginEvents,
		"logout_events":   a.LogoutEvents,
		"page_visits":     a.PageVisits,
		"form_submission": sub,
		"summary":         a.Summary(nowFrom(ac.Now)),
	})
}

func (ac *AnalyticsController) loadAll(c *gin.Context) ([]analytics.Activity, bool) {
	var users []models.User
	if err := ac.DB.Order("id ASC").Find(&users).Error; err != nil {
		internalError(c, ac.Log, err)
		return nil, false
	}
	acts, err := analytics.LoadActivity(ac.DB, users)
	if err != nil {
		internalError(c, ac.Log, err)
		return nil, false
	}
	return acts, true
}

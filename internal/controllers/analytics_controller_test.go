package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/presentation_analytics/internal/analytics"
	"github.com/zaqqye/presentation_analytics/internal/models"
)

func TestSimplifiedAnalytics(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	user := seedUser(t, db, "alice", models.RoleUser)
	clock := newClock()

	analytics.RecordLogin(db, user.ID, clock.t)
	clock.Advance(125 * time.Second)
	if _, err := analytics.RecordLogout(db, user.ID, clock.t); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)
	analytics.RecordLogin(db, user.ID, clock.t)
	clock.Advance(10 * time.Second)

	ac := &AnalyticsController{DB: db, Log: testLog, Now: clock.Now}
	r := gin.New()
	r.Use(asUser(admin))
	r.GET("/simplified", ac.SimplifiedAnalytics)
	r.GET("/raw", ac.UserAnalytics)

	w := doJSON(t, r, http.MethodGet, "/simplified", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	out := decode[[]simplifiedUserAnalytics](t, w)
	if len(out) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out))
	}
	alice := out[1]
	if alice.User.ID != user.ID {
		t.Fatalf("unexpected order %+v", out)
	}
	if alice.TotalLogins != 2 || alice.TotalTimeSpentSeconds != 125 {
		t.Fatalf("unexpected totals %+v", alice.Summary)
	}
	open, closed := alice.Sessions[0], alice.Sessions[1]
	if open.Resolved || open.SessionDurationSeconds != 10 || open.LogoutTimestamp != nil {
		t.Fatalf("unexpected open session %+v", open)
	}
	if !closed.Resolved || closed.SessionDurationSeconds != 125 {
		t.Fatalf("unexpected closed session %+v", closed)
	}

	clock.Advance(25 * time.Hour)
	out = decode[[]simplifiedUserAnalytics](t, doJSON(t, r, http.MethodGet, "/simplified", nil))
	if s := out[1].Sessions[0]; s.SessionDurationSeconds != 0 || s.Resolved {
		t.Fatalf("stale session should report 0, got %+v", s)
	}
	if out[1].TotalTimeSpentSeconds != 125 {
		t.Fatalf("stale session must not change total, got %v", out[1].TotalTimeSpentSeconds)
	}

	raw := decode[[]analytics.Activity](t, doJSON(t, r, http.MethodGet, "/raw", nil))
	if len(raw) != 2 || len(raw[1].LoginEvents) != 2 || len(raw[1].LogoutEvents) != 1 {
		t.Fatalf("unexpected raw analytics %+v", raw)
	}
}

type myAnalyticsBody struct {
	LoginEvents    []models.LoginEvent    `json:"login_events"`
	FormSubmission *models.FormSubmission `json:"form_submission"`
	Summary        analytics.Summary      `json:"summary"`
}

func TestMyAnalytics(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	clock := newClock()
	analytics.RecordLogin(db, user.ID, clock.t)
	db.Create(&models.FormSubmission{UserID: user.ID, Feedback: "nice", Rating: 5, SubmittedAt: clock.t})
	clock.Advance(30 * time.Second)

	ac := &AnalyticsController{DB: db, Log: testLog, Now: clock.Now}
	r := gin.New()
	r.Use(asUser(user))
	r.GET("/mine", ac.MyAnalytics)

	w := doJSON(t, r, http.MethodGet, "/mine", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := decode[myAnalyticsBody](t, w)
	if len(body.LoginEvents) != 1 || body.FormSubmission == nil || body.FormSubmission.Rating != 5 {
		t.Fatalf("unexpected body %+v", body)
	}
	if !body.Summary.HasSubmittedForm || body.Summary.TotalTimeSpentSeconds != 0 || body.Summary.Sessions[0].SessionDurationSeconds != 30 {
		t.Fatalf("unexpected summary %+v", body.Summary)
	}
}

package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

func presentationRouter(pc *PresentationController, u models.User) *gin.Engine {
	r := gin.New()
	r.Use(asUser(u))
	r.POST("/presentations", pc.Create)
	r.GET("/presentations", pc.List)
	r.GET("/presentations/users/:user_id", pc.GetForUser)
	r.PUT("/presentations/:id", pc.Update)
	r.DELETE("/presentations/:id", pc.Delete)
	return r
}

func samplePresentation(userID uint, active *bool) gin.H {
	body := gin.H{
		"user_id":  userID,
		"title":    "Welcome back",
		"subtitle": "Your quarter in review",
		"slides": []gin.H{
			{"id": 1, "title": "Intro", "subtitle": "", "content": gin.H{"text": "hello", "bullets": []string{"a", "b"}}},
			{"id": 2, "title": "Numbers", "subtitle": "Q3"},
		},
	}
	if active != nil {
		body["is_active"] = *active
	}
	return body
}

func TestCreatePresentationSingleActive(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	user := seedUser(t, db, "alice", models.RoleUser)
	r := presentationRouter(&PresentationController{DB: db, Log: testLog}, admin)

	w := doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(user.ID, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	created := decode[models.PersonalizedPresentation](t, w)
	if !created.IsActive || len(created.Slides) != 2 || created.Slides[0].Content["text"] != "hello" {
		t.Fatalf("unexpected presentation %+v", created)
	}
	if created.Slides[1].Content == nil {
		t.Fatal("missing content should default to an empty object")
	}

	w = doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(user.ID, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second active: expected 400 got %d", w.Code)
	}

	inactive := false
	w = doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(user.ID, &inactive))
	if w.Code != http.StatusCreated {
		t.Fatalf("inactive draft: expected 201 got %d", w.Code)
	}
	draft := decode[models.PersonalizedPresentation](t, w)

	// activating the draft while the first is active is rejected
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/presentations/%d", draft.ID), gin.H{"is_active": true})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("activate draft: expected 400 got %d", w.Code)
	}

	// deactivate the first, then the draft can be activated
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/presentations/%d", created.ID), gin.H{"is_active": false})
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate: expected 200 got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/presentations/%d", draft.ID), gin.H{"is_active": true, "title": "Final"})
	if w.Code != http.StatusOK {
		t.Fatalf("activate draft: expected 200 got %d: %s", w.Code, w.Body.String())
	}

	var active int64
	db.Model(&models.PersonalizedPresentation{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&active)
	if active != 1 {
		t.Fatalf("expected one active presentation, got %d", active)
	}
}

func TestCreatePresentationUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	r := presentationRouter(&PresentationController{DB: db, Log: testLog}, admin)

	if w := doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(404, nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestGetPresentationOwnership(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	owner := seedUser(t, db, "alice", models.RoleUser)
	other := seedUser(t, db, "mallory", models.RoleUser)
	pc := &PresentationController{DB: db, Log: testLog}
	doJSON(t, presentationRouter(pc, admin), http.MethodPost, "/presentations", samplePresentation(owner.ID, nil))

	path := fmt.Sprintf("/presentations/users/%d", owner.ID)
	cases := []struct {
		as   models.User
		want int
	}{
		{owner, http.StatusOK},
		{admin, http.StatusOK},
		{other, http.StatusForbidden},
	}
	for _, tc := range cases {
		if w := doJSON(t, presentationRouter(pc, tc.as), http.MethodGet, path, nil); w.Code != tc.want {
			t.Errorf("as %s: expected %d got %d", tc.as.Username, tc.want, w.Code)
		}
	}

	w := doJSON(t, presentationRouter(pc, other), http.MethodGet, fmt.Sprintf("/presentations/users/%d", other.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("user without presentation: expected 404 got %d", w.Code)
	}
}

func TestListAndDeletePresentation(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	owner := seedUser(t, db, "alice", models.RoleUser)
	r := presentationRouter(&PresentationController{DB: db, Log: testLog}, admin)
	created := decode[models.PersonalizedPresentation](t, doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(owner.ID, nil)))

	list := decode[[]presentationWithUser](t, doJSON(t, r, http.MethodGet, "/presentations", nil))
	if len(list) != 1 || list[0].User.ID != owner.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	path := fmt.Sprintf("/presentations/%d", created.ID)
	if w := doJSON(t, r, http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, path, gin.H{"title": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("update deleted: expected 404 got %d", w.Code)
	}
}

func TestUpdatePresentationContent(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	user := seedUser(t, db, "alice", models.RoleUser)
	r := presentationRouter(&PresentationController{DB: db, Log: testLog}, admin)

	created := decode[models.PersonalizedPresentation](t, doJSON(t, r, http.MethodPost, "/presentations", samplePresentation(user.ID, nil)))
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/presentations/%d", created.ID), gin.H{
		"title":  "Updated",
		"slides": []gin.H{{"id": 7, "title": "Only slide"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d: %s", w.Code, w.Body.String())
	}

	var stored models.PersonalizedPresentation
	db.First(&stored, created.ID)
	if stored.Title != "Updated" || stored.Subtitle != "Your quarter in review" || !stored.IsActive {
		t.Fatalf("unexpected stored presentation %+v", stored)
	}
	if len(stored.Slides) != 1 || stored.Slides[0].ID != 7 {
		t.Fatalf("slides not replaced: %+v", stored.Slides)
	}

	if w := doJSON(t, r, http.MethodPut, "/presentations/999", gin.H{"title": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404 got %d", w.Code)
	}
}

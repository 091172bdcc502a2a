package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealth(t *testing.T) {
	db := setupTestDB(t)
	hc := &HealthController{DB: db, Version: "test", Environment: "development"}
	r := gin.New()
	r.GET("/health", hc.Health)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if body := decode[map[string]any](t, w); body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()
	if w := doJSON(t, r, http.MethodGet, "/health", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed db: expected 503 got %d", w.Code)
	}
}

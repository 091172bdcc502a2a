package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
	"github.com/zaqqye/presentation_analytics/internal/ws"
)

type PageVisitController struct {
	DB  *gorm.DB
	Log *slog.Logger
	Hub *ws.ActivityHub
	Now func() time.Time
}

type createPageVisitRequest struct {
	PageName string `json:"page_name" binding:"required,max=255"`
}

type updatePageVisitRequest struct {
	ExitTime time.Time `json:"exit_time" binding:"required"`
	// DurationSeconds is derived from entry and exit time when omitted.
	DurationSeconds *float64 `json:"duration_seconds" binding:"omitempty,min=0"`
}

func (pc *PageVisitController) Create(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req createPageVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	visit := models.PageVisit{
		UserID:    user.ID,
		PageName:  strings.TrimSpace(req.PageName),
		EntryTime: nowFrom(pc.Now),
	}
	if err := pc.DB.Create(&visit).Error; err != nil {
		internalError(c, pc.Log, err)
		return
	}
	pc.Hub.Publish(ws.ActivityEvent{Type: ws.EventPageVisit, UserID: user.ID, At: visit.EntryTime, Data: gin.H{"page_name": visit.PageName}})
	c.JSON(http.StatusCreated, visit)
}

// Update records the page exit. Only the owner can close a visit, and only once.
func (pc *PageVisitController) Update(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updatePageVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var visit models.PageVisit
	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&visit).Error; err != nil {
			return err
		}
		if visit.ExitTime != nil {
			return conflict("page visit already closed")
		}
		exit := req.ExitTime.UTC()
		duration := exit.Sub(visit.EntryTime).Seconds()
		if req.DurationSeconds != nil {
			duration = *req.DurationSeconds
		}
		if duration < 0 {
			duration = 0
		}
		visit.ExitTime = &exit
		visit.DurationSeconds = &duration
		return tx.Model(&visit).Updates(map[string]any{
			"exit_time":        exit,
			"duration_seconds": duration,
		}).Error
	})
	if err != nil {
		writeError(c, pc.Log, err, "page visit not found")
		return
	}
	pc.Hub.Publish(ws.ActivityEvent{Type: ws.EventPageExit, UserID: user.ID, At: *visit.ExitTime, Data: gin.H{
		"page_name":        visit.PageName,
		"duration_seconds": *visit.DurationSeconds,
	}})
	c.JSON(http.StatusOK, visit)
}

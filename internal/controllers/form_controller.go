package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
	"github.com/zaqqye/presentation_analytics/internal/ws"
)

type FormController struct {
	DB  *gorm.DB
	Log *slog.Logger
	Hub *ws.ActivityHub
	Now func() time.Time
}

type submitFormRequest struct {
	Feedback        string  `json:"feedback" binding:"required"`
	Rating          int     `json:"rating" binding:"required,min=1,max=5"`
	Suggestions     *string `json:"suggestions"`
	SelectedOptions *string `json:"selected_options"`
	ContactName     *string `json:"contact_name"`
	ContactEmail    *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone    *string `json:"contact_phone"`
	ContactNotes    *string `json:"contact_notes"`
}

type submissionWithUser struct {
	models.FormSubmission
	User models.User `json:"user"`
}

// Submit stores the caller's single feedback form.
func (fc *FormController) Submit(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req submitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := models.FormSubmission{
		UserID:          user.ID,
		Feedback:        req.Feedback,
		Rating:          req.Rating,
		Suggestions:     req.Suggestions,
		SelectedOptions: req.SelectedOptions,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		ContactNotes:    req.ContactNotes,
		SubmittedAt:     nowFrom(fc.Now),
	}
	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FormSubmission{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("you have already submitted a form")
		}
		return tx.Create(&sub).Error
	})
	if isUniqueViolation(err) {
		err = conflict("you have already submitted a form")
	}
	if err != nil {
		writeError(c, fc.Log, err, "")
		return
	}
	fc.Hub.Publish(ws.ActivityEvent{Type: ws.EventFormSubmission, UserID: user.ID, At: sub.SubmittedAt, Data: gin.H{"rating": sub.Rating}})
	c.JSON(http.StatusCreated, sub)
}

func (fc *FormController) ListSubmissions(c *gin.Context) {
	var subs []models.FormSubmission
	if err := fc.DB.Order("submitted_at DESC").Find(&subs).Error; err != nil {
		internalError(c, fc.Log, err)
		return
	}
	users, err := usersByID(fc.DB, userIDsOf(subs, func(s models.FormSubmission) uint { return s.UserID }))
	if err != nil {
		internalError(c, fc.Log, err)
		return
	}
	out := make([]submissionWithUser, 0, len(subs))
	for _, s := range subs {
		u, ok := users[s.UserID]
		if !ok {
			continue
		}
		out = append(out, submissionWithUser{FormSubmission: s, User: u})
	}
	c.JSON(http.StatusOK, out)
}

func (fc *FormController) GetSubmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var sub models.FormSubmission
	if err := fc.DB.First(&sub, id).Error; err != nil {
		writeError(c, fc.Log, err, "submission not found")
		return
	}
	var user models.User
	if err := fc.DB.First(&user, sub.UserID).Error; err != nil {
		writeError(c, fc.Log, err, "submission not found")
		return
	}
	c.JSON(http.StatusOK, submissionWithUser{FormSubmission: sub, User: user})
}

func (fc *FormController) MySubmission(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var sub models.FormSubmission
	if err := fc.DB.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		writeError(c, fc.Log, err, "no submission found")
		return
	}
	c.JSON(http.StatusOK, sub)
}

func userIDsOf[T any](rows []T, id func(T) uint) []uint {
	seen := make(map[uint]struct{}, len(rows))
	out := make([]uint, 0, len(rows))
	for _, r := range rows {
		k := id(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func usersByID(db *gorm.DB, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

type PresentationController struct {
	DB  *gorm.DB
	Log *slog.Logger
}

type slideRequest struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Content  map[string]any `json:"content"`
}

type createPresentationRequest struct {
	UserID   uint           `json:"user_id" binding:"required"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Slides   []slideRequest `json:"slides"`
	IsActive *bool          `json:"is_active"`
}

type updatePresentationRequest struct {
	Title    *string         `json:"title"`
	Subtitle *string         `json:"subtitle"`
	Slides   *[]slideRequest `json:"slides"`
	IsActive *bool           `json:"is_active"`
}

type presentationWithUser struct {
	models.PersonalizedPresentation
	User models.User `json:"user"`
}

const errActivePresentation = "user already has an active personalized presentation"

func toSlides(in []slideRequest) datatypes.JSONSlice[models.Slide] {
	out := make(datatypes.JSONSlice[models.Slide], 0, len(in))
	for _, s := range in {
		content := s.Content
		if content == nil {
			content = map[string]any{}
		}
		out = append(out, models.Slide{ID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Content: content})
	}
	return out
}

// ensureNoOtherActive fails with a conflict when userID has an active
// presentation other than exceptID.
func ensureNoOtherActive(tx *gorm.DB, userID, exceptID uint) error {
	q := tx.Model(&models.PersonalizedPresentation{}).Where("user_id = ? AND is_active = ?", userID, true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict(errActivePresentation)
	}
	return nil
}

func (pc *PresentationController) Create(c *gin.Context) {
	var req createPresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := models.PersonalizedPresentation{
		UserID:   req.UserID,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Slides:   toSlides(req.Slides),
		IsActive: active,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, req.UserID).Error; err != nil {
			return err
		}
		if active {
			if err := ensureNoOtherActive(tx, req.UserID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&p).Error
	})
	if isUniqueViolation(err) {
		err = conflict(errActivePresentation)
	}
	if err != nil {
		writeError(c, pc.Log, err, "user not found")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *PresentationController) List(c *gin.Context) {
	var items []models.PersonalizedPresentation
	if err := pc.DB.Order("updated_at DESC").Find(&items).Error; err != nil {
		internalError(c, pc.Log, err)
		return
	}
	users, err := usersByID(pc.DB, userIDsOf(items, func(p models.PersonalizedPresentation) uint { return p.UserID }))
	if err != nil {
		internalError(c, pc.Log, err)
		return
	}
	out := make([]presentationWithUser, 0, len(items))
	for _, p := range items {
		u, ok := users[p.UserID]
		if !ok {
			continue
		}
		out = append(out, presentationWithUser{PersonalizedPresentation: p, User: u})
	}
	c.JSON(http.StatusOK, out)
}

// GetForUser returns the active presentation of :user_id to that user or an admin.
func (pc *PresentationController) GetForUser(c *gin.Context) {
	current, ok := mustUser(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if !current.IsAdmin() && current.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this presentation"})
		return
	}
	var p models.PersonalizedPresentation
	if err := pc.DB.Where("user_id = ? AND is_active = ?", userID, true).First(&p).Error; err != nil {
		writeError(c, pc.Log, err, "no personalized presentation found for this user")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *PresentationController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var p models.PersonalizedPresentation
	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Subtitle != nil {
			p.Subtitle = *req.Subtitle
		}
		if req.Slides != nil {
			p.Slides = toSlides(*req.Slides)
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		if p.IsActive {
			if err := ensureNoOtherActive(tx, p.UserID, p.ID); err != nil {
				return err
			}
		}
		return tx.Save(&p).Error
	})
	if isUniqueViolation(err) {
		err = conflict(errActivePresentation)
	}
	if err != nil {
		writeError(c, pc.Log, err, "presentation not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *PresentationController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res := pc.DB.Delete(&models.PersonalizedPresentation{}, id)
	if res.Error != nil {
		internalError(c, pc.Log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "presentation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "presentation deleted successfully"})
}

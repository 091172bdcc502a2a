package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/models"
)

type UserController struct {
	DB           *gorm.DB
	Log          *slog.Logger
	PasswordCost int
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// ListUsers supports limit, page, all, sort_by, sort_dir, q and role.
func (uc *UserController) ListUsers(c *gin.Context) {
	all := strings.EqualFold(c.Query("all"), "true") || c.Query("all") == "1"
	limit := 50
	page := 1
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	sortBy := strings.ToLower(c.DefaultQuery("sort_by", "created_at"))
	sortDir := strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
	if sortDir != "ASC" && sortDir != "DESC" {
		sortDir = "DESC"
	}
	allowedSorts := map[string]string{
		"id":         "id",
		"created_at": "created_at",
		"email":      "email",
		"username":   "username",
		"role":       "role",
	}
	sortCol, ok := allowedSorts[sortBy]
	if !ok {
		sortCol = "created_at"
	}
	order := fmt.Sprintf("%s %s, id %s", sortCol, sortDir, sortDir)

	qText := strings.ToLower(strings.TrimSpace(c.Query("q")))
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	if role != "" && !models.IsValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	filters := func(db *gorm.DB) *gorm.DB {
		if qText != "" {
			like := "%" + qText + "%"
			db = db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		if role != "" {
			db = db.Where("role = ?", role)
		}
		return db
	}

	var total int64
	if err := uc.DB.Model(&models.User{}).Scopes(filters).Count(&total).Error; err != nil {
		internalError(c, uc.Log, err)
		return
	}

	listQ := uc.DB.Scopes(filters).Order(order)
	if !all {
		listQ = listQ.Offset((page - 1) * limit).Limit(limit)
	}
	users := []models.User{}
	if err := listQ.Find(&users).Error; err != nil {
		internalError(c, uc.Log, err)
		return
	}

	meta := gin.H{"total": total, "all": all}
	if !all {
		meta["limit"] = limit
		meta["page"] = page
		meta["sort_by"] = sortBy
		meta["sort_dir"] = sortDir
	}
	if qText != "" {
		meta["q"] = qText
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "meta": meta})
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	user, err := createUser(uc.DB, uc.PasswordCost, req.Email, req.Username, req.Password, role)
	if err != nil {
		writeError(c, uc.Log, err, "")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		writeError(c, uc.Log, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the user and every row it owns in one transaction.
// Admins cannot delete themselves.
func (uc *UserController) DeleteUser(c *gin.Context) {
	current, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == current.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	err := uc.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		owned := []any{
			&models.LogoutEvent{},
			&models.LoginEvent{},
			&models.PageVisit{},
			&models.FormSubmission{},
			&models.PersonalizedPresentation{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		internalError(c, uc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

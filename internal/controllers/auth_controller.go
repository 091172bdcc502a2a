package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/analytics"
	"github.com/zaqqye/presentation_analytics/internal/middleware"
	"github.com/zaqqye/presentation_analytics/internal/models"
	"github.com/zaqqye/presentation_analytics/internal/utils"
	"github.com/zaqqye/presentation_analytics/internal/ws"
)

type AuthController struct {
	DB        *gorm.DB
	Log       *slog.Logger
	Hub       *ws.ActivityHub
	JWTSecret string
	AccessTTL time.Duration
	// PasswordCost is the bcrypt cost for new accounts; zero means the default.
	PasswordCost int
	Now          func() time.Time
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a regular user account. Admin accounts are only created by admins.
func (a *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := createUser(a.DB, a.PasswordCost, req.Email, req.Username, req.Password, models.RoleUser)
	if err != nil {
		writeError(c, a.Log, err, "")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := a.DB.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
		return
	}
	if err != nil {
		internalError(c, a.Log, err)
		return
	}
	if !utils.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
		return
	}

	now := nowFrom(a.Now)
	token, err := middleware.IssueToken(user, a.JWTSecret, a.AccessTTL, now)
	if err != nil {
		internalError(c, a.Log, err)
		return
	}
	ev, err := analytics.RecordLogin(a.DB, user.ID, now)
	if err != nil {
		internalError(c, a.Log, err)
		return
	}
	a.Hub.Publish(ws.ActivityEvent{Type: ws.EventLogin, UserID: user.ID, At: now, Data: gin.H{"login_event_id": ev.ID}})

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(a.AccessTTL.Seconds()),
		"role":         user.Role,
	})
}

func (a *AuthController) Me(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout closes the caller's open session. A missing session is reported in
// the body, not as an error status.
func (a *AuthController) Logout(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	now := nowFrom(a.Now)
	res, err := analytics.RecordLogout(a.DB, user.ID, now)
	if errors.Is(err, analytics.ErrNoActiveSession) {
		c.JSON(http.StatusOK, gin.H{"message": "no active session", "active_session": false})
		return
	}
	if err != nil {
		internalError(c, a.Log, err)
		return
	}
	if !res.AlreadyClosed {
		a.Hub.Publish(ws.ActivityEvent{Type: ws.EventLogout, UserID: user.ID, At: now, Data: gin.H{
			"login_event_id":           res.LoginEvent.ID,
			"session_duration_seconds": *res.LoginEvent.SessionDurationSeconds,
		}})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":                  "logout event recorded",
		"active_session":           true,
		"login_event_id":           res.LoginEvent.ID,
		"session_duration_seconds": *res.LoginEvent.SessionDurationSeconds,
	})
}

// createUser is shared by signup and the admin user endpoint.
func createUser(db *gorm.DB, cost int, email, username, password, role string) (models.User, error) {
	email = utils.NormalizeEmail(email)
	username = strings.TrimSpace(username)

	hashed, err := utils.HashPassword(password, cost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Email: email, Username: username, HashedPassword: hashed, Role: role}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("email already registered")
		}
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("username already taken")
		}
		return tx.Create(&user).Error
	})
	if isUniqueViolation(err) {
		return models.User{}, conflict("email or username already registered")
	}
	return user, err
}

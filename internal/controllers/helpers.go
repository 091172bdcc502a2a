package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/middleware"
	"github.com/zaqqye/presentation_analytics/internal/models"
)

// errConflict carries a message that is safe to show the caller.
type errConflict struct{ msg string }

func (e errConflict) Error() string { return e.msg }

func conflict(msg string) error { return errConflict{msg: msg} }

// isUniqueViolation matches both gorm's translated error and a raw Postgres 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// internalError logs err with the request ID and hides it from the caller.
func internalError(c *gin.Context, log *slog.Logger, err error) {
	log.Error("request failed", "request_id", middleware.RequestID(c), "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// writeError maps conflict, not-found and everything else to 400, 404 and 500.
func writeError(c *gin.Context, log *slog.Logger, err error, notFoundMsg string) {
	var cf errConflict
	switch {
	case errors.As(err, &cf):
		c.JSON(http.StatusBadRequest, gin.H{"error": cf.msg})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		internalError(c, log, err)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

func mustUser(c *gin.Context) (models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return u, ok
}

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn().UTC()
}

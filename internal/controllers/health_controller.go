package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB          *gorm.DB
	Version     string
	Environment string
}

func (hc *HealthController) Health(c *gin.Context) {
	response := gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"version":     hc.Version,
		"environment": hc.Environment,
		"database":    "healthy",
	}

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response["database"] = "unhealthy"
		response["database_error"] = err.Error()
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

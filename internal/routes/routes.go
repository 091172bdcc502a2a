package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/config"
	"github.com/zaqqye/presentation_analytics/internal/controllers"
	"github.com/zaqqye/presentation_analytics/internal/middleware"
	"github.com/zaqqye/presentation_analytics/internal/models"
	"github.com/zaqqye/presentation_analytics/internal/ws"
)

const Version = "1.0.0"

// Deps are the services built in main and shared by every handler.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Log     *slog.Logger
	Hub     *ws.ActivityHub
	Limiter *middleware.RateLimiter
	Metrics *middleware.Metrics
	// Now overrides the clock in tests.
	Now func() time.Time
}

func Register(r *gin.Engine, d Deps) {
	r.Use(middleware.TrustedHosts(d.Cfg.AllowedHosts))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.ProcessTime())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(d.Cfg.CORSOrigins)))
	r.Use(d.Limiter.Middleware())

	// Controllers
	authCtrl := &controllers.AuthController{DB: d.DB, Log: d.Log, Hub: d.Hub, JWTSecret: d.Cfg.JWTSecret, AccessTTL: d.Cfg.AccessTTL(), PasswordCost: d.Cfg.BcryptCost, Now: d.Now}
	userCtrl := &controllers.UserController{DB: d.DB, Log: d.Log, PasswordCost: d.Cfg.BcryptCost}
	visitCtrl := &controllers.PageVisitController{DB: d.DB, Log: d.Log, Hub: d.Hub, Now: d.Now}
	formCtrl := &controllers.FormController{DB: d.DB, Log: d.Log, Hub: d.Hub, Now: d.Now}
	analyticsCtrl := &controllers.AnalyticsController{DB: d.DB, Log: d.Log, Now: d.Now}
	presCtrl := &controllers.PresentationController{DB: d.DB, Log: d.Log}
	healthCtrl := &controllers.HealthController{DB: d.DB, Version: Version, Environment: d.Cfg.Environment}

	r.GET("/health", healthCtrl.Health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/signup", authCtrl.Signup)
		auth.POST("/login", authCtrl.Login)
	}

	// Protected
	authMW := middleware.AuthMiddleware(d.DB, middleware.AuthConfig{JWTSecret: d.Cfg.JWTSecret})
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.POST("/auth/logout", authCtrl.Logout)

		users := api.Group("/users", adminOnly)
		{
			users.GET("", userCtrl.ListUsers)
			users.POST("", userCtrl.CreateUser)
			users.GET("/:id", userCtrl.GetUser)
			users.DELETE("/:id", userCtrl.DeleteUser)
		}

		an := api.Group("/analytics")
		{
			an.POST("/page-visits", visitCtrl.Create)
			an.PUT("/page-visits/:id", visitCtrl.Update)
			an.POST("/logout", authCtrl.Logout)
			an.GET("/my-analytics", analyticsCtrl.MyAnalytics)
			an.GET("/user-analytics", adminOnly, analyticsCtrl.UserAnalytics)
			an.GET("/simplified-analytics", adminOnly, analyticsCtrl.SimplifiedAnalytics)
		}

		forms := api.Group("/forms")
		{
			forms.POST("/submit", formCtrl.Submit)
			forms.GET("/my-submission", formCtrl.MySubmission)
			forms.GET("/submissions", adminOnly, formCtrl.ListSubmissions)
			forms.GET("/submissions/:id", adminOnly, formCtrl.GetSubmission)
		}

		pres := api.Group("/presentations")
		{
			pres.GET("/users/:user_id", presCtrl.GetForUser)
			pres.GET("", adminOnly, presCtrl.List)
			pres.POST("", adminOnly, presCtrl.Create)
			pres.PUT("/:id", adminOnly, presCtrl.Update)
			pres.DELETE("/:id", adminOnly, presCtrl.Delete)
		}
	}

	// Browsers cannot set headers on websocket upgrades, so the live feed
	// also accepts ?token=.
	live := middleware.AuthMiddleware(d.DB, middleware.AuthConfig{JWTSecret: d.Cfg.JWTSecret, AllowQueryToken: true})
	r.GET("/api/v1/analytics/live", live, adminOnly, ws.ActivityHandler(d.Hub))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, middleware.ProcessTimeHeader},
		MaxAge:        12 * time.Hour,
	}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		// credentials cannot be combined with a wildcard origin
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

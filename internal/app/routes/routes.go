package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atomclub/attendance/internal/app/controllers"
	"github.com/atomclub/attendance/internal/middleware"
)

// HealthChecker reports dependency health for the readiness probe
type HealthChecker interface {
	Healthy(c *gin.Context) (dbOK, cacheOK bool)
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	attendanceController *controllers.AttendanceController,
	facultyController *controllers.FacultyController,
	authMiddleware *middleware.AuthMiddleware,
	health HealthChecker,
) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/healthz", func(c *gin.Context) {
		dbOK, cacheOK := health.Healthy(c)
		status := http.StatusOK
		if !dbOK {
			status = http.StatusServiceUnavailable
		}
		// The cache is optional; its state is reported but never fails
		// the probe.
		c.JSON(status, gin.H{"status": "ok", "db": dbOK, "cache": cacheOK})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// Everything else requires a valid session
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/auth/me", authController.Me)

		authenticated.GET("/faculty", facultyController.List)

		requests := authenticated.Group("/attendance-requests")
		{
			requests.POST("", attendanceController.Create)
			requests.GET("", attendanceController.List)
			requests.GET("/statistics", attendanceController.Statistics)
			requests.GET("/:id", attendanceController.Get)
			requests.PATCH("/:id/status", attendanceController.UpdateStatus)
			requests.DELETE("/:id", attendanceController.Delete)
			requests.POST("/:id/proof", attendanceController.UploadProof)
		}
	}
}

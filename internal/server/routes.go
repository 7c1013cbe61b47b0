package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/projectpleasure/pleasure/internal/config"
	"github.com/projectpleasure/pleasure/internal/logger"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config, tracker Tracker, health HealthChecker) {
	e.Use(RequestIDMiddleware())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderUserID},
	}))
	e.Use(LoggingMiddleware(logger.Logger))
	e.Use(MetricsMiddleware())

	e.GET("/health", handleHealth(health))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", IdentityMiddleware())

	api.GET("/analytics", handleGetAnalytics(tracker))
	api.GET("/report", handleGetReport(tracker))
	api.GET("/stats", handleGetStats(tracker))
	api.GET("/profile", handleGetProfile(tracker))

	api.GET("/activities", handleListActivities(tracker))
	api.POST("/activities", handleCreateActivity(tracker))
	api.GET("/activities/:id", handleGetActivity(tracker))
	api.DELETE("/activities/:id", handleDeleteActivity(tracker))

	api.GET("/partners", handleListPartners(tracker))
	api.POST("/partners", handleCreatePartner(tracker))
	api.DELETE("/partners", handleDeletePartner(tracker))
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/aggregator"
	"github.com/projectpleasure/pleasure/internal/analytics"
	"github.com/projectpleasure/pleasure/internal/config"
)

// Tracker is what the HTTP handlers need from the analytics service.
type Tracker interface {
	Analytics(ctx context.Context, userID string, window activity.RangeWindow) (*aggregator.Result, error)
	MonthlyStats(ctx context.Context, userID string) (*analytics.MonthlyStats, error)
	Report(ctx context.Context, userID string) (*analytics.Report, error)
	Profile(ctx context.Context, userID string) (*analytics.Profile, error)

	ListActivities(ctx context.Context, userID string) ([]*activity.Activity, error)
	GetActivity(ctx context.Context, userID, activityID string) (*activity.Activity, error)
	RecordActivity(ctx context.Context, userID string, in activity.NewActivity) (*activity.Activity, error)
	DeleteActivity(ctx context.Context, userID, activityID string) error

	PartnersWithStats(ctx context.Context, userID string) ([]activity.PartnerStats, error)
	CreatePartner(ctx context.Context, userID string, in activity.NewPartner) (*analytics.CreatedPartner, error)
	DeletePartner(ctx context.Context, userID, partnerID string) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
}

func New(cfg *config.Config, tracker Tracker, health HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	RegisterRoutes(e, cfg, tracker, health)

	return &Server{echo: e, cfg: cfg.Server}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

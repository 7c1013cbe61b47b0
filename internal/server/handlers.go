package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/apperr"
)

func handleHealth(health HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := health.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleGetAnalytics(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		window := activity.ParseRange(c.QueryParam("range"))

		result, err := tracker.Analytics(c.Request().Context(), userID(c), window)
		if err != nil {
			return handleError(c, err, "GetAnalytics", "Failed to fetch analytics")
		}
		return ok(c, result)
	}
}

func handleGetReport(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := tracker.Report(c.Request().Context(), userID(c))
		if err != nil {
			return handleError(c, err, "GetReport", "Failed to build report")
		}
		return ok(c, report)
	}
}

func handleGetStats(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := tracker.MonthlyStats(c.Request().Context(), userID(c))
		if err != nil {
			return handleError(c, err, "GetStats", "Failed to compute statistics")
		}
		return ok(c, stats)
	}
}

func handleGetProfile(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, err := tracker.Profile(c.Request().Context(), userID(c))
		if err != nil {
			return handleError(c, err, "GetProfile", "Failed to fetch profile")
		}
		return ok(c, profile)
	}
}

func handleListActivities(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		activities, err := tracker.ListActivities(c.Request().Context(), userID(c))
		if err != nil {
			return handleError(c, err, "ListActivities", "Failed to list activities")
		}
		return ok(c, activities)
	}
}

func handleCreateActivity(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in activity.NewActivity
		if err := c.Bind(&in); err != nil {
			return handleError(c, fmt.Errorf("%w: malformed request body", apperr.ErrInvalidInput), "CreateActivity", "")
		}

		created, err := tracker.RecordActivity(c.Request().Context(), userID(c), in)
		if err != nil {
			return handleError(c, err, "CreateActivity", "Failed to save activity")
		}
		return okMessage(c, "Activity saved", created)
	}
}

func handleGetActivity(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		a, err := tracker.GetActivity(c.Request().Context(), userID(c), c.Param("id"))
		if err != nil {
			if apperr.IsNotFound(err) {
				err = apperr.New(apperr.CodeNotFound, "Activity not found", "GetActivity", err)
			}
			return handleError(c, err, "GetActivity", "Failed to fetch activity")
		}
		return ok(c, a)
	}
}

func handleDeleteActivity(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := tracker.DeleteActivity(c.Request().Context(), userID(c), c.Param("id")); err != nil {
			if apperr.IsNotFound(err) {
				err = apperr.New(apperr.CodeNotFound, "Activity not found", "DeleteActivity", err)
			}
			return handleError(c, err, "DeleteActivity", "Failed to delete activity")
		}
		return okMessage(c, "Activity deleted", nil)
	}
}

func handleListPartners(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		partners, err := tracker.PartnersWithStats(c.Request().Context(), userID(c))
		if err != nil {
			return handleError(c, err, "ListPartners", "Failed to fetch partners")
		}
		return ok(c, partners)
	}
}

func handleCreatePartner(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in activity.NewPartner
		if err := c.Bind(&in); err != nil {
			return handleError(c, fmt.Errorf("%w: malformed request body", apperr.ErrInvalidInput), "CreatePartner", "")
		}

		created, err := tracker.CreatePartner(c.Request().Context(), userID(c), in)
		if err != nil {
			if apperr.IsConflict(err) {
				err = apperr.New(apperr.CodeConflict, "A partner with this nickname already exists", "CreatePartner", err)
			}
			return handleError(c, err, "CreatePartner", "Failed to create partner")
		}

		resp := envelope{Success: true, Data: created.Partner}
		if created.Warning != "" {
			warning := created.Warning
			resp.Warning = &warning
		}
		return c.JSON(http.StatusOK, resp)
	}
}

type deletePartnerRequest struct {
	ID string `json:"id" query:"id"`
}

func handleDeletePartner(tracker Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req deletePartnerRequest
		if err := c.Bind(&req); err != nil {
			return handleError(c, fmt.Errorf("%w: malformed request body", apperr.ErrInvalidInput), "DeletePartner", "")
		}

		if err := tracker.DeletePartner(c.Request().Context(), userID(c), req.ID); err != nil {
			return handleError(c, err, "DeletePartner", "Failed to delete partner")
		}
		return okMessage(c, "Partner removed", nil)
	}
}

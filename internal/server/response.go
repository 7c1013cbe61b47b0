package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/projectpleasure/pleasure/internal/apperr"
	"github.com/projectpleasure/pleasure/internal/logger"
)

type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Message string  `json:"message,omitempty"`
	Warning *string `json:"warning,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func okMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// handleError writes the failure envelope. fallback is shown to clients for
// errors whose detail should stay server-side.
func handleError(c echo.Context, err error, operation, fallback string) error {
	appErr := apperr.Classify(err, operation, fallback)
	status := appErr.HTTPStatus()

	log := logger.WithContext(c.Request().Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "operation", operation, "code", string(appErr.Code), "error", err)
	} else {
		log.Warn("request rejected", "operation", operation, "code", string(appErr.Code), "error", err)
	}

	return c.JSON(status, envelope{Success: false, Message: appErr.Message})
}

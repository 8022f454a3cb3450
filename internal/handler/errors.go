package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/departure"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   errType,
		Message: message,
	})
}

// respondServiceError maps a departure service error to its HTTP status.
func respondServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, departure.ErrInvalidPartnerKind),
		errors.Is(err, departure.ErrInvalidDelay),
		errors.Is(err, departure.ErrNoTimings),
		errors.Is(err, departure.ErrInvalidActivity),
		errors.Is(err, departure.ErrInvalidStateUpdate):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, departure.ErrTripSourceUnavailable):
		slog.ErrorContext(ctx, "trip source unavailable",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadGateway, "trip_source_unavailable", "trip source could not be reached")
	case errors.Is(err, departure.ErrPreferencesUnavailable),
		errors.Is(err, departure.ErrLedgerUnavailable):
		slog.ErrorContext(ctx, "storage unavailable",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable")
	default:
		slog.ErrorContext(ctx, "unexpected service error",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "processing_error", "failed to process request")
	}
}

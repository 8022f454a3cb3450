package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/departure"
)

// DepartureService is the part of the departure pipeline exposed over HTTP.
type DepartureService interface {
	Preferences(ctx context.Context, userID string) domain.NotificationPreferences
	Refresh(ctx context.Context, userID string, now time.Time) (*departure.RefreshResponse, error)
	ListDepartures(ctx context.Context, userID string, now time.Time) (*departure.ListResponse, error)
	UpdatePreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences, now time.Time) (*departure.PreferencesUpdate, error)
	ScheduleActivityReminder(ctx context.Context, userID string, activity departure.Activity, timings []domain.ReminderTiming, now time.Time) (*departure.SendResult, error)
	NotifyPartner(ctx context.Context, userID string, event departure.PartnerEvent, now time.Time) (*departure.SendResult, error)
	ReportDelay(ctx context.Context, userID, eventID string, delayMinutes int, now time.Time) (*departure.SendResult, error)
	MarkNotification(ctx context.Context, userID, notificationID string, state domain.NotificationState, now time.Time) (domain.ScheduledNotification, error)
}

type DepartureHandler struct {
	service DepartureService
	clock   func() time.Time
}

func NewDepartureHandler(service DepartureService) *DepartureHandler {
	return &DepartureHandler{
		service: service,
		clock:   time.Now,
	}
}

type TestReminderRequest struct {
	Activity departure.Activity      `json:"activity"`
	Timings  []domain.ReminderTiming `json:"timings"`
}

type DelayRequest struct {
	DelayMinutes int `json:"delay_minutes" binding:"required"`
}

type StateRequest struct {
	State domain.NotificationState `json:"state" binding:"required"`
}

// Register mounts the departure routes on r.
func (h *DepartureHandler) Register(r gin.IRouter) {
	users := r.Group("/users/:userID")
	users.POST("/departures/refresh", h.HandleRefresh)
	users.GET("/departures", h.HandleListDepartures)
	users.POST("/departures/:eventID/delay", h.HandleReportDelay)
	users.GET("/preferences", h.HandleGetPreferences)
	users.PUT("/preferences", h.HandleUpdatePreferences)
	users.POST("/reminders/test", h.HandleTestReminder)
	users.POST("/partner/notify", h.HandleNotifyPartner)
	users.POST("/notifications/:notificationID/state", h.HandleNotificationState)
}

func (h *DepartureHandler) HandleRefresh(c *gin.Context) {
	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), userID, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DepartureHandler) HandleListDepartures(c *gin.Context) {
	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	resp, err := h.service.ListDepartures(c.Request.Context(), userID, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DepartureHandler) HandleGetPreferences(c *gin.Context) {
	userID, _, ok := h.requestScope(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.service.Preferences(c.Request.Context(), userID))
}

// HandleUpdatePreferences applies the request body on top of the current snapshot, so
// fields the client omits keep their stored values.
func (h *DepartureHandler) HandleUpdatePreferences(c *gin.Context) {
	ctx := c.Request.Context()

	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	prefs := h.service.Preferences(ctx, userID)
	if err := c.ShouldBindJSON(&prefs); err != nil {
		slog.WarnContext(ctx, "preferences unmarshal failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := prefs.Validate(); err != nil {
		slog.InfoContext(ctx, "repairing out-of-range preferences",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	update, err := h.service.UpdatePreferences(ctx, userID, prefs, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// HandleTestReminder schedules reminders for an ad-hoc activity. Without explicit
// timings the user's default reminder timings are used.
func (h *DepartureHandler) HandleTestReminder(c *gin.Context) {
	ctx := c.Request.Context()

	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req TestReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	timings := req.Timings
	if len(timings) == 0 {
		timings = h.service.Preferences(ctx, userID).ActivityReminders.DefaultTimings
	}

	result, err := h.service.ScheduleActivityReminder(ctx, userID, req.Activity, timings, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DepartureHandler) HandleNotifyPartner(c *gin.Context) {
	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	var event departure.PartnerEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := h.service.NotifyPartner(c.Request.Context(), userID, event, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DepartureHandler) HandleReportDelay(c *gin.Context) {
	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req DelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := h.service.ReportDelay(c.Request.Context(), userID, c.Param("eventID"), req.DelayMinutes, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleNotificationState receives fired and delivered callbacks from the
// notification facility.
func (h *DepartureHandler) HandleNotificationState(c *gin.Context) {
	ctx := c.Request.Context()

	userID, now, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	state := domain.NotificationState(strings.ToLower(strings.TrimSpace(string(req.State))))
	n, err := h.service.MarkNotification(ctx, userID, c.Param("notificationID"), state, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

// requestScope resolves the user and the evaluation time of a request. The optional
// from query evaluates the request against a virtual now.
func (h *DepartureHandler) requestScope(c *gin.Context) (string, time.Time, bool) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "user id is required")
		return "", time.Time{}, false
	}

	fromStr := c.Query("from")
	if fromStr == "" {
		return userID, h.clock().UTC(), true
	}

	now, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid from time format, expected RFC3339")
		return "", time.Time{}, false
	}

	slog.InfoContext(c.Request.Context(), "using virtual time",
		slog.String("user_id", userID),
		slog.Time("virtual_now", now),
	)
	return userID, now.UTC(), true
}

//go:build !gcloud

package notifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

// PrimindTasksClient schedules notifications on a Primind Tasks compatible queue.
type PrimindTasksClient struct {
	baseURL    string
	queueName  string
	httpClient *http.Client
	maxRetries int
}

func NewPrimindTasksClient(baseURL, queueName string, maxRetries int) *PrimindTasksClient {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &PrimindTasksClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		queueName: queueName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
	}
}

func (c *PrimindTasksClient) Schedule(ctx context.Context, payload *domain.Payload) (*Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	primindReq := PrimindTaskRequest{
		Task: PrimindTask{
			HTTPRequest: PrimindHTTPRequest{
				Body: base64.StdEncoding.EncodeToString(body),
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
			},
		},
	}

	if !payload.FireAt.IsZero() {
		primindReq.Task.ScheduleTime = payload.FireAt.UTC().Format(time.RFC3339)
	}

	reqBody, err := json.Marshal(primindReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal primind request: %w", err)
	}

	url := fmt.Sprintf("%s/tasks", c.baseURL)
	if c.queueName != "" && c.queueName != "default" {
		url = fmt.Sprintf("%s/tasks/%s", c.baseURL, c.queueName)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(ctx, "retrying notification schedule",
				slog.String("notification_id", payload.NotificationID),
				slog.String("user_id", payload.UserID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff(attempt)),
			)
			if err := waitBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		receipt, err := c.doSchedule(ctx, url, reqBody, payload)
		if err == nil {
			return receipt, nil
		}
		if isPermanent(err) {
			return nil, err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "all retries exhausted for notification schedule",
		slog.String("notification_id", payload.NotificationID),
		slog.String("user_id", payload.UserID),
		slog.Int("max_retries", c.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return nil, fmt.Errorf("failed to schedule notification after %d retries: %w", c.maxRetries, lastErr)
}

func (c *PrimindTasksClient) doSchedule(ctx context.Context, url string, reqBody []byte, payload *domain.Payload) (*Receipt, error) {
	ctx, span := tracing.StartFacilitySpan(ctx, "schedule", payload.NotificationID)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "failed to send request to Primind Tasks",
			slog.String("notification_id", payload.NotificationID),
			slog.String("error", err.Error()),
		)
		tracing.RecordFacilityResult(span, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, http.StatusOK, http.StatusCreated); err != nil {
		slog.WarnContext(ctx, "unexpected status code from Primind Tasks",
			slog.String("notification_id", payload.NotificationID),
			slog.Int("status_code", resp.StatusCode),
		)
		tracing.RecordFacilityResult(span, err)
		return nil, err
	}

	var primindResp PrimindTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&primindResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	scheduleTime, _ := time.Parse(time.RFC3339, primindResp.ScheduleTime)
	createTime, _ := time.Parse(time.RFC3339, primindResp.CreateTime)

	slog.InfoContext(ctx, "notification scheduled on Primind Tasks",
		slog.String("task_name", primindResp.Name),
		slog.String("notification_id", payload.NotificationID),
		slog.String("user_id", payload.UserID),
	)
	tracing.RecordFacilityResult(span, nil)

	return &Receipt{
		Handle:       primindResp.Name,
		ScheduleTime: scheduleTime,
		CreateTime:   createTime,
	}, nil
}

func (c *PrimindTasksClient) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(handle, "/"))

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(ctx, "retrying notification cancel",
				slog.String("handle", handle),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff(attempt)),
			)
			if err := waitBackoff(ctx, attempt); err != nil {
				return err
			}
		}

		err := c.doCancel(ctx, url, handle)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "all retries exhausted for notification cancel",
		slog.String("handle", handle),
		slog.Int("max_retries", c.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("failed to cancel notification after %d retries: %w", c.maxRetries, lastErr)
}

func (c *PrimindTasksClient) doCancel(ctx context.Context, url, handle string) error {
	ctx, span := tracing.StartFacilitySpan(ctx, "cancel", handle)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordFacilityResult(span, err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.InfoContext(ctx, "task not found in Primind Tasks (may have been processed)",
			slog.String("handle", handle),
		)
		tracing.RecordFacilityResult(span, nil)
		return nil
	}

	if err := statusError(resp.StatusCode, http.StatusOK, http.StatusNoContent); err != nil {
		slog.WarnContext(ctx, "failed to cancel Primind task",
			slog.String("handle", handle),
			slog.Int("status_code", resp.StatusCode),
		)
		tracing.RecordFacilityResult(span, err)
		return err
	}

	slog.InfoContext(ctx, "task cancelled in Primind Tasks",
		slog.String("handle", handle),
	)
	tracing.RecordFacilityResult(span, nil)
	return nil
}

func statusError(code int, accepted ...int) error {
	for _, ok := range accepted {
		if code == ok {
			return nil
		}
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrPermissionDenied, code)
	case code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", ErrRejected, code)
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

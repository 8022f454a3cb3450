package tripsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a trip source client whose requests give up after timeout. A
// non-positive timeout falls back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(baseURL, timeout),
	}
}

func (c *Client) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	var resp BookingsResponse
	if err := c.getJSON(ctx, "list_bookings", fmt.Sprintf("/api/v1/users/%s/bookings", url.PathEscape(userID)), &resp); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "successfully fetched bookings",
		slog.String("user_id", userID),
		slog.Int("count", len(resp.Bookings)),
	)

	return resp.Bookings, nil
}

func (c *Client) ListTrips(ctx context.Context, userID string) ([]domain.Trip, error) {
	var resp TripsResponse
	if err := c.getJSON(ctx, "list_trips", fmt.Sprintf("/api/v1/users/%s/trips", url.PathEscape(userID)), &resp); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "successfully fetched trips",
		slog.String("user_id", userID),
		slog.Int("count", len(resp.Trips)),
	)

	return resp.Trips, nil
}

func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u = u.JoinPath(path)

	ctx, span := tracing.StartExternalAPISpan(ctx, operation, u.String())
	defer span.End()

	slog.DebugContext(ctx, "fetching from trip source",
		slog.String("url", u.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to trip source",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected status code from trip source",
			slog.String("url", u.String()),
			slog.Int("status_code", resp.StatusCode),
		)
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		tracing.RecordError(span, err)
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.ErrorContext(ctx, "failed to decode response from trip source",
			slog.String("error", err.Error()),
		)
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to decode response: %w", err)
	}

	tracing.RecordError(span, nil)
	return nil
}

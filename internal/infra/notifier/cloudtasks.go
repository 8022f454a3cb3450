//go:build gcloud

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

type CloudTasksClient struct {
	client     *cloudtasks.Client
	projectID  string
	locationID string
	queueID    string
	targetURL  string
	maxRetries int
}

type CloudTasksConfig struct {
	ProjectID  string
	LocationID string
	QueueID    string
	TargetURL  string
	MaxRetries int
}

func NewCloudTasksClient(ctx context.Context, cfg CloudTasksConfig) (*CloudTasksClient, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud tasks client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &CloudTasksClient{
		client:     client,
		projectID:  cfg.ProjectID,
		locationID: cfg.LocationID,
		queueID:    cfg.QueueID,
		targetURL:  cfg.TargetURL,
		maxRetries: maxRetries,
	}, nil
}

func (c *CloudTasksClient) queuePath() string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", c.projectID, c.locationID, c.queueID)
}

func (c *CloudTasksClient) Schedule(ctx context.Context, payload *domain.Payload) (*Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	cloudTask := &taskspb.Task{
		Name: fmt.Sprintf("%s/tasks/%s", c.queuePath(), payload.NotificationID),
		MessageType: &taskspb.Task_HttpRequest{
			HttpRequest: &taskspb.HttpRequest{
				HttpMethod: taskspb.HttpMethod_POST,
				Url:        c.targetURL,
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
				Body: body,
			},
		},
	}

	if !payload.FireAt.IsZero() {
		cloudTask.ScheduleTime = timestamppb.New(payload.FireAt)
	}

	req := &taskspb.CreateTaskRequest{
		Parent: c.queuePath(),
		Task:   cloudTask,
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

		receipt, err := c.createTask(ctx, req, payload)
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

func (c *CloudTasksClient) createTask(ctx context.Context, req *taskspb.CreateTaskRequest, payload *domain.Payload) (*Receipt, error) {
	ctx, span := tracing.StartFacilitySpan(ctx, "schedule", payload.NotificationID)
	defer span.End()

	createdTask, err := c.client.CreateTask(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "failed to create cloud task",
			slog.String("notification_id", payload.NotificationID),
			slog.String("user_id", payload.UserID),
			slog.String("error", err.Error()),
		)
		err = grpcError(err)
		tracing.RecordFacilityResult(span, err)
		return nil, err
	}

	slog.InfoContext(ctx, "notification scheduled on Cloud Tasks",
		slog.String("task_name", createdTask.Name),
		slog.String("notification_id", payload.NotificationID),
		slog.String("user_id", payload.UserID),
	)
	tracing.RecordFacilityResult(span, nil)

	var scheduleTime, createTime time.Time
	if createdTask.ScheduleTime != nil {
		scheduleTime = createdTask.ScheduleTime.AsTime()
	}
	if createdTask.CreateTime != nil {
		createTime = createdTask.CreateTime.AsTime()
	}

	return &Receipt{
		Handle:       createdTask.Name,
		ScheduleTime: scheduleTime,
		CreateTime:   createTime,
	}, nil
}

func (c *CloudTasksClient) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}

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

		err := c.deleteTask(ctx, handle)
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

func (c *CloudTasksClient) deleteTask(ctx context.Context, handle string) error {
	ctx, span := tracing.StartFacilitySpan(ctx, "cancel", handle)
	defer span.End()

	err := c.client.DeleteTask(ctx, &taskspb.DeleteTaskRequest{Name: handle})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			slog.InfoContext(ctx, "task not found in Cloud Tasks (may have been processed)",
				slog.String("handle", handle),
			)
			tracing.RecordFacilityResult(span, nil)
			return nil
		}

		slog.WarnContext(ctx, "failed to delete cloud task",
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
		err = grpcError(err)
		tracing.RecordFacilityResult(span, err)
		return err
	}

	slog.InfoContext(ctx, "task deleted from Cloud Tasks",
		slog.String("handle", handle),
	)
	tracing.RecordFacilityResult(span, nil)
	return nil
}

func (c *CloudTasksClient) Close() error {
	return c.client.Close()
}

func grpcError(err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition:
		return fmt.Errorf("%w: %w", ErrRejected, err)
	default:
		return fmt.Errorf("cloud tasks call failed: %w", err)
	}
}

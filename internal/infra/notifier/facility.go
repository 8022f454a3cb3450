package notifier

import (
	"context"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

//go:generate mockgen -source=facility.go -destination=mock.go -package=notifier

// Facility is the platform notification scheduler. Schedule registers a timer that
// delivers payload at payload.FireAt; Cancel removes it. Cancelling a timer that no
// longer exists succeeds.
type Facility interface {
	Schedule(ctx context.Context, payload *domain.Payload) (*Receipt, error)
	Cancel(ctx context.Context, handle string) error
}

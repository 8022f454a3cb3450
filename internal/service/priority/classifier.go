package priority

import (
	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify marks departure-critical alerts. Only the leave-by alert and live-delay
// alerts are critical; everything else is normal.
func (c *Classifier) Classify(kind domain.NotificationKind, timing domain.ReminderTiming, hasDelay bool) domain.Priority {
	if kind != domain.KindTravelAlert {
		return domain.PriorityNormal
	}

	if timing == domain.TimingLeaveBy || hasDelay {
		return domain.PriorityCritical
	}

	return domain.PriorityNormal
}

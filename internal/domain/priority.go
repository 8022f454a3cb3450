package domain

// Priority decides whether a notification may pass quiet hours.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityNormal   Priority = "normal"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsCritical() bool {
	return p == PriorityCritical
}

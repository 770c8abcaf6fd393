package inspect

import (
	"time"

	"macwatch/internal/hwaddr"
)

// AlertType represents the kind of event raised by the inspector.
type AlertType string

const (
	AlertNewHost     AlertType = "NEW_HOST"
	AlertRogueRouter AlertType = "ROGUE_ROUTER"
	AlertTableFull   AlertType = "HOST_TABLE_FULL"
)

// Alert is one reported event.
type Alert struct {
	Type      AlertType
	Source    hwaddr.Addr
	Message   string
	Timestamp time.Time
}

// alertLog keeps the most recent alerts (circular buffer).
type alertLog struct {
	alerts []Alert
	max    int
}

func newAlertLog(size int) *alertLog {
	if size <= 0 {
		size = 20
	}
	return &alertLog{alerts: make([]Alert, 0, size), max: size}
}

func (l *alertLog) add(a Alert) {
	l.alerts = append(l.alerts, a)
	if len(l.alerts) > l.max {
		l.alerts = l.alerts[len(l.alerts)-l.max:]
	}
}

// recent returns up to limit alerts, newest last. limit <= 0 means all.
func (l *alertLog) recent(limit int) []Alert {
	start := 0
	if limit > 0 && len(l.alerts) > limit {
		start = len(l.alerts) - limit
	}
	result := make([]Alert, len(l.alerts)-start)
	copy(result, l.alerts[start:])
	return result
}

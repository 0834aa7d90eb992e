// Package notify delivers loan lifecycle events to borrowers. Delivery is
// best effort: callers log failures and carry on.
package notify

import (
	"context"
	"time"

	"creditflow-backend/internal/infrastructure/logger"
)

type EventType string

const (
	EventApproved        EventType = "loan.approved"
	EventPostponed       EventType = "loan.postponed"
	EventArchived        EventType = "loan.archived"
	EventDisbursed       EventType = "loan.disbursed"
	EventCantityProposed EventType = "loan.cantity_proposed"
)

type Event struct {
	Type       EventType `json:"type"`
	LoanID     string    `json:"loan_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier only records events in the log.
type LogNotifier struct{ log logger.Logger }

func NewLogNotifier(log logger.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.log.Info("loan notification", map[string]any{
		"type":    string(ev.Type),
		"loan_id": ev.LoanID,
		"user_id": ev.UserID,
	})
	return nil
}

// Send delivers ev with a bounded wait and swallows any failure after
// logging it. A nil notifier is allowed.
func Send(ctx context.Context, n Notifier, log logger.Logger, timeout time.Duration, ev Event) {
	if n == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := n.Notify(ctx, ev); err != nil {
		log.Warn("notification failed", map[string]any{
			"type":    string(ev.Type),
			"loan_id": ev.LoanID,
			"error":   err,
		})
	}
}

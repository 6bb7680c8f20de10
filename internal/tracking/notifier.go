package tracking

import "context"

// Notifier accepts best-effort conversion events. Implementations must not
// block the caller and must never report failures back to it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Noop discards every event; it is used when tracking is not configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}

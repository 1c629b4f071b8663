// Package notify fans a payload-less "state changed" signal out to every
// live instance. Delivery is best-effort; subscribers re-read full state on
// each signal, so lost or repeated signals are harmless.
package notify

import (
	"context"
	"strings"

	"canteen-system/internal/domain"
)

type Handler func()

type Subscription interface {
	Close() error
}

type Notifier interface {
	Notify(ctx context.Context) error
}

type Bus interface {
	Notifier
	// Subscribe runs h on its own goroutine for every signal until the
	// subscription is closed or ctx is done.
	Subscribe(ctx context.Context, h Handler) (Subscription, error)
	Close() error
}

const sep = "|"

// encodeSignal renders the wire payload: the fixed signal name optionally
// followed by the emitting instance.
func encodeSignal(source string) string {
	if source == "" {
		return domain.StateUpdated
	}
	return domain.StateUpdated + sep + source
}

func decodeSignal(payload string) (domain.StateSignal, bool) {
	name, source, _ := strings.Cut(payload, sep)
	if name != domain.StateUpdated {
		return domain.StateSignal{}, false
	}
	return domain.StateSignal{Source: source}, true
}

// Package lifecycle holds the order state machine: initial status by payment
// mode, the transition table, queue priority and daily token numbering.
package lifecycle

import (
	"errors"
	"fmt"

	"canteen-system/internal/domain"
)

type Event string

const (
	EventCollectCash  Event = "collect_cash"
	EventStartCooking Event = "start_cooking"
	EventMarkReady    Event = "mark_ready"
	EventHandOver     Event = "hand_over"
	EventCancel       Event = "cancel"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrTerminal          = errors.New("order is in a terminal status")
)

// TransitionError reports a (status, event) pair with no row in the table.
type TransitionError struct {
	From  domain.OrderStatus
	Event Event
	To    domain.OrderStatus // set when the caller asked for a target status
}

func (e *TransitionError) Error() string {
	switch {
	case e.To == "" && e.Event == "":
		return fmt.Sprintf("no transition out of %s", e.From)
	case e.To != "":
		return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("illegal status transition %s on %s", e.From, e.Event)
}

func (e *TransitionError) Is(target error) bool {
	if target == ErrIllegalTransition {
		return true
	}
	return target == ErrTerminal && IsTerminal(e.From)
}

var table = map[domain.OrderStatus]map[Event]domain.OrderStatus{
	domain.StatusAwaitingCash: {
		EventCollectCash: domain.StatusConfirmed,
		EventCancel:      domain.StatusCancelled,
	},
	domain.StatusConfirmed: {
		EventStartCooking: domain.StatusPreparing,
		EventCancel:       domain.StatusCancelled,
	},
	domain.StatusPreparing: {
		EventMarkReady: domain.StatusReady,
		EventCancel:    domain.StatusCancelled,
	},
	domain.StatusReady: {
		EventHandOver: domain.StatusCompleted,
		EventCancel:   domain.StatusCancelled,
	},
}

// forward is the single staff-driven step out of each non-terminal status.
var forward = map[domain.OrderStatus]Event{
	domain.StatusAwaitingCash: EventCollectCash,
	domain.StatusConfirmed:    EventStartCooking,
	domain.StatusPreparing:    EventMarkReady,
	domain.StatusReady:        EventHandOver,
}

var priority = map[domain.OrderStatus]int{
	domain.StatusAwaitingCash: 1,
	domain.StatusConfirmed:    2,
	domain.StatusPreparing:    3,
	domain.StatusReady:        4,
}

var actionLabels = map[domain.OrderStatus]string{
	domain.StatusAwaitingCash: "Confirm Cash",
	domain.StatusConfirmed:    "Start Cooking",
	domain.StatusPreparing:    "Mark Ready",
	domain.StatusReady:        "Complete Order",
}

// TerminalPriority sorts after every active status.
const TerminalPriority = 99

func InitialStatus(mode domain.PaymentMode) (domain.OrderStatus, error) {
	switch mode {
	case domain.PaymentOnline:
		return domain.StatusConfirmed, nil
	case domain.PaymentCashDesk:
		return domain.StatusAwaitingCash, nil
	}
	return "", fmt.Errorf("%w: unknown payment mode %q", domain.ErrInvalidInput, mode)
}

func IsTerminal(s domain.OrderStatus) bool {
	return s == domain.StatusCompleted || s == domain.StatusCancelled
}

func Apply(from domain.OrderStatus, ev Event) (domain.OrderStatus, error) {
	to, ok := table[from][ev]
	if !ok {
		return from, &TransitionError{From: from, Event: ev}
	}
	return to, nil
}

// Next returns the forward step out of from. ok is false for terminal or
// unknown statuses.
func Next(from domain.OrderStatus) (domain.OrderStatus, Event, bool) {
	ev, ok := forward[from]
	if !ok {
		return from, "", false
	}
	return table[from][ev], ev, true
}

// Transition finds the event that moves from into to.
func Transition(from, to domain.OrderStatus) (Event, error) {
	for ev, dst := range table[from] {
		if dst == to {
			return ev, nil
		}
	}
	return "", &TransitionError{From: from, To: to}
}

func Priority(s domain.OrderStatus) int {
	if p, ok := priority[s]; ok {
		return p
	}
	return TerminalPriority
}

// ActionLabel is the staff-facing name of the forward step, empty when there
// is none.
func ActionLabel(s domain.OrderStatus) string { return actionLabels[s] }

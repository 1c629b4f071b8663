package lifecycle

import (
	"errors"
	"testing"
	"time"

	"canteen-system/internal/domain"
)

func TestInitialStatus(t *testing.T) {
	cases := []struct {
		mode domain.PaymentMode
		want domain.OrderStatus
	}{
		{domain.PaymentOnline, domain.StatusConfirmed},
		{domain.PaymentCashDesk, domain.StatusAwaitingCash},
	}
	for _, tc := range cases {
		got, err := InitialStatus(tc.mode)
		if err != nil || got != tc.want {
			t.Fatalf("InitialStatus(%s): expected %s, got %s (%v)", tc.mode, tc.want, got, err)
		}
	}
	if _, err := InitialStatus("CARD"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown mode, got %v", err)
	}
}

func TestForwardChain(t *testing.T) {
	s := domain.StatusAwaitingCash
	want := []domain.OrderStatus{domain.StatusConfirmed, domain.StatusPreparing, domain.StatusReady, domain.StatusCompleted}
	for _, w := range want {
		next, _, ok := Next(s)
		if !ok || next != w {
			t.Fatalf("Next(%s): expected %s, got %s ok=%v", s, w, next, ok)
		}
		s = next
	}
	if _, _, ok := Next(s); ok {
		t.Fatalf("expected no forward step out of %s", s)
	}
}

func TestApplyTable(t *testing.T) {
	cases := []struct {
		from    domain.OrderStatus
		ev      Event
		want    domain.OrderStatus
		illegal bool
	}{
		{domain.StatusAwaitingCash, EventCollectCash, domain.StatusConfirmed, false},
		{domain.StatusAwaitingCash, EventStartCooking, "", true},
		{domain.StatusConfirmed, EventStartCooking, domain.StatusPreparing, false},
		{domain.StatusConfirmed, EventHandOver, "", true},
		{domain.StatusPreparing, EventMarkReady, domain.StatusReady, false},
		{domain.StatusReady, EventHandOver, domain.StatusCompleted, false},
		{domain.StatusReady, EventCancel, domain.StatusCancelled, false},
		{domain.StatusPreparing, EventCancel, domain.StatusCancelled, false},
		{domain.StatusCompleted, EventCancel, "", true},
		{domain.StatusCancelled, EventCollectCash, "", true},
	}
	for _, tc := range cases {
		got, err := Apply(tc.from, tc.ev)
		if tc.illegal {
			if !errors.Is(err, ErrIllegalTransition) {
				t.Fatalf("Apply(%s, %s): expected illegal transition, got %s (%v)", tc.from, tc.ev, got, err)
			}
			if got != tc.from {
				t.Fatalf("Apply(%s, %s): rejected transition must keep status, got %s", tc.from, tc.ev, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("Apply(%s, %s): expected %s, got %s (%v)", tc.from, tc.ev, tc.want, got, err)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []domain.OrderStatus{
		domain.StatusAwaitingCash, domain.StatusConfirmed, domain.StatusPreparing,
		domain.StatusReady, domain.StatusCompleted, domain.StatusCancelled,
	}
	for _, from := range []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled} {
		for _, to := range all {
			_, err := Transition(from, to)
			if !errors.Is(err, ErrTerminal) {
				t.Fatalf("Transition(%s, %s): expected terminal error, got %v", from, to, err)
			}
		}
	}
}

func TestTransitionResolvesEvent(t *testing.T) {
	ev, err := Transition(domain.StatusConfirmed, domain.StatusCancelled)
	if err != nil || ev != EventCancel {
		t.Fatalf("expected cancel event, got %q (%v)", ev, err)
	}
	if _, err := Transition(domain.StatusAwaitingCash, domain.StatusReady); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected skipping steps to be illegal, got %v", err)
	}
	if _, err := Transition(domain.StatusAwaitingCash, domain.StatusReady); errors.Is(err, ErrTerminal) {
		t.Fatalf("non-terminal source must not report terminal")
	}
}

func TestPriorityOrder(t *testing.T) {
	order := []domain.OrderStatus{domain.StatusAwaitingCash, domain.StatusConfirmed, domain.StatusPreparing, domain.StatusReady}
	for i := 1; i < len(order); i++ {
		if Priority(order[i-1]) >= Priority(order[i]) {
			t.Fatalf("expected %s to rank before %s", order[i-1], order[i])
		}
	}
	if Priority(domain.StatusCompleted) != TerminalPriority {
		t.Fatalf("expected terminal priority for COMPLETED")
	}
	if ActionLabel(domain.StatusAwaitingCash) != "Confirm Cash" || ActionLabel(domain.StatusCancelled) != "" {
		t.Fatalf("unexpected action labels")
	}
}

func TestNextToken(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	day1 := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
	day2 := time.Date(2024, 3, 11, 0, 5, 0, 0, loc)

	var orders []domain.Order
	for i := 0; i < 3; i++ {
		tok := NextToken(orders, day1, loc)
		if tok != FirstToken+i {
			t.Fatalf("order %d on day 1: expected token %d, got %d", i, FirstToken+i, tok)
		}
		orders = append(orders, domain.Order{TokenNumber: tok, CreatedAt: day1.Add(time.Duration(i) * time.Minute).UnixMilli()})
	}
	if tok := NextToken(orders, day2, loc); tok != FirstToken {
		t.Fatalf("expected numbering to restart on a new day, got %d", tok)
	}
}

func TestNextTokenUsesLocalDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 10th is already the 11th in IST.
	late := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	orders := []domain.Order{{CreatedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC).UnixMilli()}}
	if tok := NextToken(orders, late, loc); tok != FirstToken {
		t.Fatalf("expected first token of the IST day, got %d", tok)
	}
	if tok := NextToken(orders, late, time.UTC); tok != FirstToken+1 {
		t.Fatalf("expected second token of the UTC day, got %d", tok)
	}
}

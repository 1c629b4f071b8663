package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLocalFansOutToEverySubscriber(t *testing.T) {
	bus := NewLocal()
	defer bus.Close()
	ctx := context.Background()

	var a, b atomic.Int32
	if _, err := bus.Subscribe(ctx, func() { a.Add(1) }); err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	if _, err := bus.Subscribe(ctx, func() { b.Add(1) }); err != nil {
		t.Fatalf("subscribe b: %v", err)
	}
	if err := bus.Notify(ctx); err != nil {
		t.Fatalf("notify: %v", err)
	}
	waitFor(t, "both handlers", func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestLocalCoalescesBursts(t *testing.T) {
	bus := NewLocal()
	defer bus.Close()
	ctx := context.Background()

	release := make(chan struct{})
	var calls atomic.Int32
	_, _ = bus.Subscribe(ctx, func() {
		calls.Add(1)
		<-release
	})
	_ = bus.Notify(ctx)
	waitFor(t, "first delivery", func() bool { return calls.Load() == 1 })
	for i := 0; i < 10; i++ {
		_ = bus.Notify(ctx)
	}
	close(release)
	waitFor(t, "coalesced delivery", func() bool { return calls.Load() == 2 })
	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected burst to collapse into one extra call, got %d calls", n)
	}
}

func TestLocalSubscriptionClose(t *testing.T) {
	bus := NewLocal()
	defer bus.Close()
	ctx := context.Background()

	var calls atomic.Int32
	sub, _ := bus.Subscribe(ctx, func() { calls.Add(1) })
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("expected no live subscribers")
	}
	_ = bus.Notify(ctx)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("closed subscription must not receive signals")
	}
}

func TestLocalContextCancelUnsubscribes(t *testing.T) {
	bus := NewLocal()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())

	_, _ = bus.Subscribe(ctx, func() {})
	cancel()
	waitFor(t, "unsubscribe on cancel", func() bool { return bus.Subscribers() == 0 })
}

func TestLocalClosedBus(t *testing.T) {
	bus := NewLocal()
	_ = bus.Close()
	if err := bus.Notify(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Notify, got %v", err)
	}
	if _, err := bus.Subscribe(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Subscribe, got %v", err)
	}
}

func TestSignalCodec(t *testing.T) {
	sig, ok := decodeSignal(encodeSignal("counter-1"))
	if !ok || sig.Source != "counter-1" {
		t.Fatalf("expected source counter-1, got %+v ok=%v", sig, ok)
	}
	if _, ok := decodeSignal("state_updated"); !ok {
		t.Fatalf("bare signal must decode")
	}
	if _, ok := decodeSignal("hello"); ok {
		t.Fatalf("foreign payload must be ignored")
	}
}

package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("notify: bus closed")

// Local delivers signals between subscribers in the same process. Each
// subscriber has a one-slot buffer, so bursts collapse into a single
// refresh.
type Local struct {
	mu     sync.Mutex
	next   int
	subs   map[int]*localSub
	closed bool
}

func NewLocal() *Local { return &Local{subs: make(map[int]*localSub)} }

func (l *Local) Notify(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	for _, s := range l.subs {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	s := &localSub{bus: l, id: l.next, ch: make(chan struct{}, 1), done: make(chan struct{})}
	l.next++
	l.subs[s.id] = s
	go s.loop(ctx, h)
	return s, nil
}

// Subscribers reports how many subscriptions are live.
func (l *Local) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

func (l *Local) Close() error {
	l.mu.Lock()
	subs := l.subs
	l.subs = make(map[int]*localSub)
	l.closed = true
	l.mu.Unlock()
	for _, s := range subs {
		s.stop()
	}
	return nil
}

type localSub struct {
	bus    *Local
	id     int
	ch     chan struct{}
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
}

func (s *localSub) loop(ctx context.Context, h Handler) {
	for {
		select {
		case <-s.ch:
			if s.closed.Load() {
				return
			}
			h()
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		}
	}
}

func (s *localSub) Close() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.stop()
	return nil
}

func (s *localSub) stop() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)
	})
}

// Package session is one live view over the shared document. It keeps a
// snapshot fresh from bus signals and a poll, and applies its own writes
// immediately instead of waiting for the echo.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"canteen-system/internal/common/logger"
	"canteen-system/internal/domain"
	"canteen-system/internal/notify"
	"canteen-system/internal/repository"
)

const DefaultPollInterval = 5 * time.Second

type Commands interface {
	GetState(ctx context.Context) domain.Document
	SetCart(ctx context.Context, items []domain.CartItem) error
	PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (domain.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	AdvanceOrder(ctx context.Context, orderID string) (domain.Order, bool, error)
	CancelOrder(ctx context.Context, orderID string) (domain.Order, bool, error)
	SetStock(ctx context.Context, itemID string, upd domain.StockUpdate) (domain.DailyStock, error)
	UpsertMenuItem(ctx context.Context, item domain.MenuItem) error
	AddMenuItem(ctx context.Context, in domain.NewMenuItem) (domain.MenuItem, error)
	SetStaffPin(ctx context.Context, pin string) error
	SetAdminContact(ctx context.Context, mobile string) error
	SetPaymentConfig(ctx context.Context, cfg domain.PaymentConfig) error
	CheckStaffPin(ctx context.Context, pin string) bool
	ResetStaffPin(ctx context.Context, mobile, newPin string) error
}

var _ Commands = (*repository.Canteen)(nil)

type Subscriber interface {
	Subscribe(ctx context.Context, h notify.Handler) (notify.Subscription, error)
}

type Session struct {
	cmds Commands
	bus  Subscriber
	lg   *logger.Logger
	poll time.Duration

	mu      sync.RWMutex
	doc     domain.Document
	issued  atomic.Uint64 // stamps each load and local apply
	applied uint64        // stamp of what doc currently holds

	lmu       sync.Mutex
	nextL     int
	listeners map[int]func(domain.Document)

	emitMu  sync.Mutex
	emitted uint64 // stamp of the last snapshot handed to listeners

	cartMu sync.Mutex
}

// New builds a session. bus may be nil, in which case only polling keeps the
// snapshot fresh. A poll <= 0 means DefaultPollInterval.
func New(cmds Commands, bus Subscriber, lg *logger.Logger, poll time.Duration) *Session {
	if lg == nil {
		lg = logger.NewNop()
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Session{cmds: cmds, bus: bus, lg: lg, poll: poll, listeners: make(map[int]func(domain.Document))}
}

func (s *Session) Commands() Commands { return s.cmds }

// Run refreshes once, then on every bus signal and every poll tick until ctx
// is done. A failed subscription leaves polling in charge.
func (s *Session) Run(ctx context.Context) error {
	if s.bus != nil {
		sub, err := s.bus.Subscribe(ctx, func() { s.Refresh(ctx) })
		if err != nil {
			s.lg.Warn("subscribe_failed", map[string]any{"error": err.Error(), "poll_interval": s.poll.String()})
		} else {
			defer sub.Close()
		}
	}
	s.Refresh(ctx)

	t := time.NewTicker(s.poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh re-reads the whole document and hands it to every listener. A
// load that started before the snapshot was last replaced is dropped, so a
// slow refresh never rolls the view back.
func (s *Session) Refresh(ctx context.Context) domain.Document {
	stamp := s.issued.Add(1)
	doc := s.cmds.GetState(ctx)
	s.mu.Lock()
	if stamp < s.applied {
		cur := s.doc.Clone()
		s.mu.Unlock()
		return cur
	}
	s.doc = doc
	s.applied = stamp
	s.mu.Unlock()
	s.emit(doc, stamp)
	return doc.Clone()
}

// State returns a copy of the current snapshot.
func (s *Session) State() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// OnRefresh registers fn to receive a copy of every new snapshot, in stamp
// order. fn runs on the refreshing goroutine and must not call back into the
// session. The returned func removes it.
func (s *Session) OnRefresh(fn func(domain.Document)) func() {
	s.lmu.Lock()
	id := s.nextL
	s.nextL++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// emit delivers doc unless a newer snapshot already went out.
func (s *Session) emit(doc domain.Document, stamp uint64) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if stamp <= s.emitted {
		return
	}
	s.emitted = stamp

	s.lmu.Lock()
	fns := make([]func(domain.Document), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(doc.Clone())
	}
}

func (s *Session) apply(mut func(doc *domain.Document)) {
	s.mu.Lock()
	mut(&s.doc)
	stamp := s.issued.Add(1)
	s.applied = stamp
	doc := s.doc.Clone()
	s.mu.Unlock()
	s.emit(doc, stamp)
}

// Do runs a command and refreshes the snapshot when it succeeds.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, c Commands) error) error {
	if err := fn(ctx, s.cmds); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

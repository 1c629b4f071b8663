// Package repository is the command layer over the shared document. Every
// command is one load, mutate, save, notify cycle.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"canteen-system/internal/common/logger"
	"canteen-system/internal/domain"
	"canteen-system/internal/notify"
)

type Store interface {
	Load(ctx context.Context) domain.Document
	Save(ctx context.Context, doc domain.Document) error
}

const notifyTimeout = 3 * time.Second

// Canteen serializes the commands issued through it. Writers in other
// processes are not coordinated with: the last save wins, and a concurrent
// edit of a different field can be lost.
type Canteen struct {
	store Store
	bus   notify.Notifier
	lg    *logger.Logger

	now   func() time.Time
	loc   *time.Location
	newID func(prefix string) string

	mu sync.Mutex
}

type Option func(*Canteen)

func WithClock(now func() time.Time) Option { return func(c *Canteen) { c.now = now } }

func WithLocation(loc *time.Location) Option { return func(c *Canteen) { c.loc = loc } }

func WithIDGenerator(gen func(prefix string) string) Option {
	return func(c *Canteen) { c.newID = gen }
}

func New(store Store, bus notify.Notifier, lg *logger.Logger, opts ...Option) *Canteen {
	if lg == nil {
		lg = logger.NewNop()
	}
	c := &Canteen{store: store, bus: bus, lg: lg, now: time.Now, loc: time.Local, newID: timeOrderedID}
	for _, o := range opts {
		o(c)
	}
	return c
}

// timeOrderedID yields ids like ord_0190b5c2-... that sort by creation time.
func timeOrderedID(prefix string) string {
	return prefix + "_" + uuid.Must(uuid.NewV7()).String()
}

func (c *Canteen) GetState(ctx context.Context) domain.Document {
	return c.store.Load(ctx)
}

// mutate runs fn against a freshly loaded document and persists the result
// when fn reports a change. Returned errors leave storage untouched.
func (c *Canteen) mutate(ctx context.Context, action string, fn func(doc *domain.Document) (bool, error)) (domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := c.store.Load(ctx)
	changed, err := fn(&doc)
	if err != nil || !changed {
		return doc, err
	}
	if err := c.store.Save(ctx, doc); err != nil {
		c.lg.Error("save_failed", err, map[string]any{"command": action})
		return doc, err
	}
	c.broadcast(ctx, action)
	return doc, nil
}

func (c *Canteen) broadcast(ctx context.Context, action string) {
	if c.bus == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := c.bus.Notify(nctx); err != nil {
		c.lg.Warn("notify_failed", map[string]any{"command": action, "error": err.Error()})
		return
	}
	c.lg.Debug("state_broadcast", map[string]any{"command": action})
}

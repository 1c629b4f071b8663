package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canteen-system/internal/common/logger"
)

// Postgres signals through NOTIFY/LISTEN. Each subscription holds one pooled
// connection for as long as it lives.
type Postgres struct {
	pool    *pgxpool.Pool
	channel string
	source  string
	lg      *logger.Logger
}

func NewPostgres(pool *pgxpool.Pool, channel, source string, lg *logger.Logger) *Postgres {
	return &Postgres{pool: pool, channel: channel, source: source, lg: lg}
}

func (p *Postgres) Notify(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, p.channel, encodeSignal(p.source))
	return err
}

func (p *Postgres) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{p.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", p.channel, err)
	}

	sctx, cancel := context.WithCancel(ctx)
	sub := &pgSub{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer func() {
			uctx, ucancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer ucancel()
			_, _ = conn.Exec(uctx, "UNLISTEN *")
			conn.Release()
		}()
		for {
			n, err := conn.Conn().WaitForNotification(sctx)
			if err != nil {
				if sctx.Err() == nil {
					p.lg.Error("listen_failed", err, map[string]any{"channel": p.channel})
				}
				return
			}
			sig, ok := decodeSignal(n.Payload)
			if !ok {
				continue
			}
			p.lg.Debug("signal_received", map[string]any{"from": sig.Source, "channel": n.Channel})
			h()
		}
	}()
	return sub, nil
}

func (p *Postgres) Close() error { return nil }

type pgSub struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops listening and waits for the connection to go back to the pool.
func (s *pgSub) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

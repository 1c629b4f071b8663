package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"canteen-system/internal/common/logger"
)

// Redis uses PUBLISH/SUBSCRIBE on one channel.
type Redis struct {
	client  redis.UniversalClient
	channel string
	source  string
	lg      *logger.Logger
}

func NewRedis(client redis.UniversalClient, channel, source string, lg *logger.Logger) *Redis {
	return &Redis{client: client, channel: channel, source: source, lg: lg}
}

func (r *Redis) Notify(ctx context.Context) error {
	return r.client.Publish(ctx, r.channel, encodeSignal(r.source)).Err()
}

func (r *Redis) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	sub := &redisSub{ps: ps}
	msgs := ps.Channel()
	go func() {
		for {
			select {
			case m, ok := <-msgs:
				if !ok {
					return
				}
				sig, ok := decodeSignal(m.Payload)
				if !ok {
					continue
				}
				r.lg.Debug("signal_received", map[string]any{"from": sig.Source, "channel": m.Channel})
				h()
			case <-ctx.Done():
				_ = sub.Close()
				return
			}
		}
	}()
	return sub, nil
}

func (r *Redis) Close() error { return nil }

type redisSub struct {
	ps   *redis.PubSub
	once sync.Once
	err  error
}

func (s *redisSub) Close() error {
	s.once.Do(func() { s.err = s.ps.Close() })
	return s.err
}

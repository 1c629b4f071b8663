package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"canteen-system/internal/common/logger"
	"canteen-system/internal/common/mq"
	"canteen-system/internal/domain"
)

// RabbitMQ publishes to a durable fanout exchange. Every subscriber binds
// its own exclusive auto-delete queue, so each live instance sees every
// signal while it is connected and nothing piles up after it leaves.
type RabbitMQ struct {
	client   *mq.Client
	exchange string
	source   string
	lg       *logger.Logger
}

func NewRabbitMQ(client *mq.Client, exchange, source string, lg *logger.Logger) (*RabbitMQ, error) {
	if err := client.DeclareFanout(exchange); err != nil {
		return nil, fmt.Errorf("declare %s: %w", exchange, err)
	}
	return &RabbitMQ{client: client, exchange: exchange, source: source, lg: lg}, nil
}

func (r *RabbitMQ) Notify(ctx context.Context) error {
	return r.client.Publish(ctx, r.exchange, "", amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "text/plain",
		MessageId:    uuid.NewString(),
		AppId:        r.source,
		Body:         []byte(domain.StateUpdated),
	})
}

func (r *RabbitMQ) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	ch, err := r.client.Channel()
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare subscriber queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", r.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("bind %s: %w", q.Name, err)
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}

	sub := &amqpSub{ch: ch}
	go func() {
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				if _, ok := decodeSignal(string(d.Body)); !ok {
					r.lg.Debug("signal_ignored", map[string]any{"queue": q.Name, "message_id": d.MessageId})
					continue
				}
				r.lg.Debug("signal_received", map[string]any{"from": d.AppId, "message_id": d.MessageId})
				h()
			case <-ctx.Done():
				_ = sub.Close()
				return
			}
		}
	}()
	return sub, nil
}

// Close is a no-op; the connection belongs to whoever dialed it.
func (r *RabbitMQ) Close() error { return nil }

type amqpSub struct {
	ch   *amqp.Channel
	once sync.Once
	err  error
}

func (s *amqpSub) Close() error {
	s.once.Do(func() { s.err = s.ch.Close() })
	return s.err
}

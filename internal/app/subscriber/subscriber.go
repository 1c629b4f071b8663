// Package subscriber listens on the notification bus and logs every signal
// together with a short summary of the state it points at.
package subscriber

import (
	"context"
	"fmt"

	"canteen-system/internal/app/bootstrap"
	"canteen-system/internal/common/logger"
	"canteen-system/internal/view"
)

func Run(ctx context.Context, rt *bootstrap.Runtime, lg *logger.Logger) error {
	received := 0
	sub, err := rt.Bus.Subscribe(ctx, func() {
		received++
		doc := rt.Repo.GetState(ctx)
		fields := map[string]any{
			"seq":    received,
			"orders": len(doc.Orders),
			"active": len(view.ActiveQueue(doc.Orders)),
			"cart":   view.CartQuantity(doc.Cart),
		}
		if n := len(doc.Orders); n > 0 {
			last := doc.Orders[n-1]
			fields["last_token"] = last.TokenNumber
			fields["last_status"] = last.Status
		}
		lg.Info("state_updated", fields)
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Close()

	lg.Info("subscriber_listening", map[string]any{"driver": rt.Config.Notify.Driver})
	<-ctx.Done()
	return nil
}

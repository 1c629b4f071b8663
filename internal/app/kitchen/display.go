// Package kitchen runs a headless staff display: a live session whose every
// refresh is rendered to the log as the current cooking queue.
package kitchen

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"canteen-system/internal/app/bootstrap"
	"canteen-system/internal/common/logger"
	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
	"canteen-system/internal/session"
	"canteen-system/internal/view"
)

func Run(ctx context.Context, rt *bootstrap.Runtime, lg *logger.Logger) error {
	sess := session.New(rt.Repo, rt.Bus, lg.Named("session"), rt.Config.Notify.PollInterval)
	d := &Display{lg: lg}
	stop := sess.OnRefresh(d.Render)
	defer stop()
	return sess.Run(ctx)
}

// Display logs the queue whenever it differs from the last one rendered.
type Display struct {
	lg *logger.Logger

	mu   sync.Mutex
	last string
	low  string
}

func (d *Display) Render(doc domain.Document) {
	queue := view.ActiveQueue(doc.Orders)
	lines := make([]string, len(queue))
	byStatus := make(map[domain.OrderStatus]int)
	for i, o := range queue {
		lines[i] = ticket(o)
		byStatus[o.Status]++
	}
	fp := strings.Join(lines, ";")

	var low []string
	for _, c := range view.VisibleMenu(doc) {
		if c.LowStock || c.OutOfStock {
			low = append(low, fmt.Sprintf("%s=%d", c.Item.Name, c.Stock.StockQty))
		}
	}
	lowFP := strings.Join(low, ",")

	d.mu.Lock()
	defer d.mu.Unlock()
	if fp != d.last {
		d.last = fp
		counts := make(map[string]any, len(byStatus))
		for s, n := range byStatus {
			counts[string(s)] = n
		}
		d.lg.Info("queue_changed", map[string]any{"active": len(queue), "by_status": counts, "tickets": lines})
	}
	if lowFP != d.low {
		d.low = lowFP
		if lowFP != "" {
			d.lg.Warn("stock_low", map[string]any{"items": low})
		}
	}
}

// ticket renders one order as "#102 PREPARING [Start Cooking] Maggi x2, Samosa x1".
func ticket(o domain.Order) string {
	items := make([]string, len(o.Items))
	for i, it := range o.Items {
		items[i] = fmt.Sprintf("%s x%d", it.Name, it.Qty)
	}
	label := lifecycle.ActionLabel(o.Status)
	return fmt.Sprintf("#%d %s [%s] %s", o.TokenNumber, o.Status, label, strings.Join(items, ", "))
}

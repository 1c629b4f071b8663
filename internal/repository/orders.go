package repository

import (
	"context"
	"slices"

	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
)

// SetCart replaces the stored cart. Lines with qty < 1 are dropped and
// repeated ids are merged.
func (c *Canteen) SetCart(ctx context.Context, items []domain.CartItem) error {
	cart := domain.NormalizeCart(items)
	_, err := c.mutate(ctx, "set_cart", func(doc *domain.Document) (bool, error) {
		doc.Cart = cart
		return true, nil
	})
	return err
}

// PlaceOrder records a checkout. Tracked stock is decremented by the ordered
// quantities, never below zero; over-ordering is accepted. The total is
// stored as given.
func (c *Canteen) PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (domain.Order, error) {
	status, err := lifecycle.InitialStatus(in.Mode)
	if err != nil {
		return domain.Order{}, err
	}
	if err := domain.ValidatePrice(in.Total); err != nil {
		return domain.Order{}, err
	}
	items := domain.NormalizeCart(slices.Clone(in.Items))

	var order domain.Order
	_, err = c.mutate(ctx, "place_order", func(doc *domain.Document) (bool, error) {
		for _, line := range items {
			s, ok := doc.Stock[line.ID]
			if !ok || !s.TrackStock {
				continue
			}
			s.StockQty = max(s.StockQty-line.Qty, 0)
			doc.Stock[line.ID] = s
		}

		now := c.now()
		order = domain.Order{
			ID:          c.newID("ord"),
			TokenNumber: lifecycle.NextToken(doc.Orders, now, c.loc),
			Items:       items,
			TotalAmount: in.Total,
			PaymentMode: in.Mode,
			Status:      status,
			CreatedAt:   now.UnixMilli(),
			StudentName: in.StudentName,
		}
		doc.Orders = append(doc.Orders, order)
		doc.Cart = []domain.CartItem{}
		return true, nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	c.lg.Info("order_placed", map[string]any{
		"order_id": order.ID, "token": order.TokenNumber, "mode": order.PaymentMode,
		"status": order.Status, "total": order.TotalAmount, "lines": len(order.Items),
	})
	return order, nil
}

// SetOrderStatus moves an order to status along the transition table. An
// unknown id is ignored. Asking for the current status is a no-op. Any other
// move not in the table returns a *lifecycle.TransitionError and changes
// nothing.
func (c *Canteen) SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	_, err := c.mutate(ctx, "set_order_status", func(doc *domain.Document) (bool, error) {
		i := doc.OrderIndex(orderID)
		if i < 0 {
			c.lg.Debug("order_not_found", map[string]any{"order_id": orderID})
			return false, nil
		}
		from := doc.Orders[i].Status
		if from == status {
			return false, nil
		}
		if _, err := lifecycle.Transition(from, status); err != nil {
			return false, err
		}
		doc.Orders[i].Status = status
		c.lg.Info("order_status_changed", map[string]any{"order_id": orderID, "old_status": from, "new_status": status})
		return true, nil
	})
	return err
}

// AdvanceOrder applies the next forward step. found is false when no order
// has that id. A terminal order is returned unchanged with an error matching
// lifecycle.ErrTerminal.
func (c *Canteen) AdvanceOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	return c.applyEvent(ctx, "advance_order", orderID, func(from domain.OrderStatus) (domain.OrderStatus, error) {
		to, _, ok := lifecycle.Next(from)
		if !ok {
			return from, &lifecycle.TransitionError{From: from}
		}
		return to, nil
	})
}

func (c *Canteen) CancelOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	return c.applyEvent(ctx, "cancel_order", orderID, func(from domain.OrderStatus) (domain.OrderStatus, error) {
		return lifecycle.Apply(from, lifecycle.EventCancel)
	})
}

func (c *Canteen) applyEvent(ctx context.Context, action, orderID string, step func(domain.OrderStatus) (domain.OrderStatus, error)) (domain.Order, bool, error) {
	var (
		out   domain.Order
		found bool
	)
	_, err := c.mutate(ctx, action, func(doc *domain.Document) (bool, error) {
		i := doc.OrderIndex(orderID)
		if i < 0 {
			return false, nil
		}
		found = true
		out = doc.Orders[i]
		from := out.Status
		to, err := step(from)
		if err != nil {
			return false, err
		}
		doc.Orders[i].Status = to
		out.Status = to
		c.lg.Info("order_status_changed", map[string]any{"order_id": orderID, "old_status": from, "new_status": to})
		return true, nil
	})
	return out, found, err
}

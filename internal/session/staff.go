package session

import (
	"context"
	"fmt"

	"canteen-system/internal/domain"
)

func (s *Session) AdvanceOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	o, found, err := s.cmds.AdvanceOrder(ctx, orderID)
	if err == nil && found {
		s.Refresh(ctx)
	}
	return o, found, err
}

func (s *Session) CancelOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	o, found, err := s.cmds.CancelOrder(ctx, orderID)
	if err == nil && found {
		s.Refresh(ctx)
	}
	return o, found, err
}

// ToggleAvailability flips the item's on-menu flag for today.
func (s *Session) ToggleAvailability(ctx context.Context, itemID string) (domain.DailyStock, error) {
	cur, err := s.stockOf(itemID)
	if err != nil {
		return domain.DailyStock{}, err
	}
	flip := !cur.Available
	return s.setStock(ctx, itemID, domain.StockUpdate{Available: &flip})
}

// AdjustStock adds delta to the remaining quantity, floored at zero.
func (s *Session) AdjustStock(ctx context.Context, itemID string, delta int) (domain.DailyStock, error) {
	cur, err := s.stockOf(itemID)
	if err != nil {
		return domain.DailyStock{}, err
	}
	qty := max(cur.StockQty+delta, 0)
	return s.setStock(ctx, itemID, domain.StockUpdate{StockQty: &qty})
}

func (s *Session) stockOf(itemID string) (domain.DailyStock, error) {
	doc := s.State()
	if _, ok := doc.FindMenuItem(itemID); !ok {
		return domain.DailyStock{}, fmt.Errorf("%w: menu item %s", domain.ErrNotFound, itemID)
	}
	return doc.Stock[itemID], nil
}

func (s *Session) setStock(ctx context.Context, itemID string, upd domain.StockUpdate) (domain.DailyStock, error) {
	st, err := s.cmds.SetStock(ctx, itemID, upd)
	if err != nil {
		return domain.DailyStock{}, err
	}
	s.Refresh(ctx)
	return st, nil
}

// Package view derives read-only projections from a document. Nothing here
// caches or mutates; callers recompute on every refresh.
package view

import (
	"slices"
	"sort"

	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
)

const (
	HistoryLimit = 50
	// UntrackedLineLimit caps a cart line for items without stock tracking.
	UntrackedLineLimit = 99
	LowStockThreshold  = 20
)

// MenuCard is one student-visible menu entry.
type MenuCard struct {
	Item       domain.MenuItem   `json:"item"`
	Stock      domain.DailyStock `json:"stock"`
	InCart     int               `json:"inCart"`
	OutOfStock bool              `json:"outOfStock"`
	MaxAllowed int               `json:"maxAllowed"`
	LowStock   bool              `json:"lowStock"`
}

// CanAdd reports whether one more unit may go into the cart.
func (c MenuCard) CanAdd() bool { return !c.OutOfStock && c.InCart < c.MaxAllowed }

type CartLine struct {
	Item      domain.CartItem `json:"item"`
	LineTotal float64         `json:"lineTotal"`
}

// VisibleMenu lists catalog items marked available today, in catalog order.
func VisibleMenu(doc domain.Document) []MenuCard {
	inCart := make(map[string]int, len(doc.Cart))
	for _, l := range doc.Cart {
		inCart[l.ID] += l.Qty
	}
	out := make([]MenuCard, 0, len(doc.Catalog))
	for _, item := range doc.Catalog {
		s, ok := doc.Stock[item.ID]
		if !ok || !s.Available {
			continue
		}
		out = append(out, card(item, s, inCart[item.ID]))
	}
	return out
}

// Card builds the menu card for id regardless of availability.
func Card(doc domain.Document, id string) (MenuCard, bool) {
	item, ok := doc.FindMenuItem(id)
	if !ok {
		return MenuCard{}, false
	}
	qty := 0
	for _, l := range doc.Cart {
		if l.ID == id {
			qty += l.Qty
		}
	}
	return card(item, doc.Stock[id], qty), true
}

func card(item domain.MenuItem, s domain.DailyStock, inCart int) MenuCard {
	c := MenuCard{Item: item, Stock: s, InCart: inCart, MaxAllowed: UntrackedLineLimit}
	if s.TrackStock {
		c.OutOfStock = s.StockQty <= 0
		c.MaxAllowed = max(s.StockQty, 0)
		c.LowStock = !c.OutOfStock && s.StockQty < LowStockThreshold
	}
	return c
}

func CartLines(cart []domain.CartItem) []CartLine {
	out := make([]CartLine, len(cart))
	for i, l := range cart {
		out[i] = CartLine{Item: l, LineTotal: l.BasePrice * float64(l.Qty)}
	}
	return out
}

func CartTotal(cart []domain.CartItem) float64 {
	var total float64
	for _, l := range cart {
		total += l.BasePrice * float64(l.Qty)
	}
	return total
}

func CartQuantity(cart []domain.CartItem) int {
	n := 0
	for _, l := range cart {
		n += l.Qty
	}
	return n
}

// ActiveQueue returns non-terminal orders, most urgent status first. Orders
// with the same status keep their placement order.
func ActiveQueue(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !lifecycle.IsTerminal(o.Status) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lifecycle.Priority(out[i].Status) < lifecycle.Priority(out[j].Status)
	})
	return out
}

// History returns terminal orders newest first, at most limit of them. The
// limit never exceeds HistoryLimit; a limit <= 0 means HistoryLimit.
func History(orders []domain.Order, limit int) []domain.Order {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	out := make([]domain.Order, 0, min(len(orders), limit))
	for _, o := range orders {
		if lifecycle.IsTerminal(o.Status) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > limit {
		out = slices.Clip(out[:limit])
	}
	return out
}

func FindOrder(orders []domain.Order, id string) (domain.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

package view

import (
	"fmt"
	"testing"

	"canteen-system/internal/domain"
	"canteen-system/internal/store"
)

func TestVisibleMenuHidesUnavailable(t *testing.T) {
	doc := store.Default()
	s := doc.Stock["m2"]
	s.Available = false
	doc.Stock["m2"] = s

	menu := VisibleMenu(doc)
	for _, c := range menu {
		if c.Item.ID == "m2" {
			t.Fatalf("unavailable item m2 must not be listed")
		}
	}
	if len(menu) != 5 {
		t.Fatalf("expected 5 visible items, got %d", len(menu))
	}
}

func TestMenuCardLimits(t *testing.T) {
	doc := store.Default()
	doc.Stock["m1"] = domain.DailyStock{ItemID: "m1", Available: true, StockQty: 0, TrackStock: true}
	doc.Stock["m4"] = domain.DailyStock{ItemID: "m4", Available: true, StockQty: 3, TrackStock: true}
	doc.Cart = []domain.CartItem{{MenuItem: domain.MenuItem{ID: "m4", BasePrice: 12}, Qty: 3}}

	cards := map[string]MenuCard{}
	for _, c := range VisibleMenu(doc) {
		cards[c.Item.ID] = c
	}
	if c := cards["m1"]; !c.OutOfStock || c.CanAdd() {
		t.Fatalf("m1 should be out of stock, got %+v", c)
	}
	if c := cards["m4"]; c.MaxAllowed != 3 || c.InCart != 3 || c.CanAdd() || !c.LowStock {
		t.Fatalf("m4 should be at its limit with a low-stock hint, got %+v", c)
	}
	if c := cards["m3"]; c.MaxAllowed != UntrackedLineLimit || c.OutOfStock || c.LowStock {
		t.Fatalf("untracked m3 should allow %d, got %+v", UntrackedLineLimit, c)
	}
	if c := cards["m6"]; c.LowStock {
		t.Fatalf("m6 has 80 left and should not be low, got %+v", c)
	}
}

func TestCartTotals(t *testing.T) {
	cart := []domain.CartItem{
		{MenuItem: domain.MenuItem{ID: "m1", BasePrice: 50}, Qty: 2},
		{MenuItem: domain.MenuItem{ID: "m4", BasePrice: 12}, Qty: 3},
	}
	if got := CartTotal(cart); got != 136 {
		t.Fatalf("expected total 136, got %v", got)
	}
	if got := CartQuantity(cart); got != 5 {
		t.Fatalf("expected 5 units, got %d", got)
	}
	lines := CartLines(cart)
	if lines[0].LineTotal != 100 || lines[1].LineTotal != 36 {
		t.Fatalf("unexpected line totals %+v", lines)
	}
}

func TestActiveQueueOrdering(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Status: domain.StatusReady},
		{ID: "b", Status: domain.StatusAwaitingCash},
		{ID: "c", Status: domain.StatusCompleted},
		{ID: "d", Status: domain.StatusPreparing},
		{ID: "e", Status: domain.StatusConfirmed},
		{ID: "f", Status: domain.StatusAwaitingCash},
		{ID: "g", Status: domain.StatusCancelled},
	}
	got := ActiveQueue(orders)
	want := []string{"b", "f", "e", "d", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d active orders, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("queue[%d]: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	var orders []domain.Order
	for i := 0; i < 60; i++ {
		st := domain.StatusCompleted
		if i%2 == 1 {
			st = domain.StatusCancelled
		}
		orders = append(orders, domain.Order{ID: fmt.Sprintf("o%d", i), Status: st, CreatedAt: int64(1000 + i)})
	}
	orders = append(orders, domain.Order{ID: "live", Status: domain.StatusPreparing, CreatedAt: 5000})

	h := History(orders, 0)
	if len(h) != HistoryLimit {
		t.Fatalf("expected %d entries, got %d", HistoryLimit, len(h))
	}
	if h[0].ID != "o59" || h[len(h)-1].ID != "o10" {
		t.Fatalf("expected o59..o10, got %s..%s", h[0].ID, h[len(h)-1].ID)
	}
	for _, o := range h {
		if o.ID == "live" {
			t.Fatalf("active order leaked into history")
		}
	}
	if n := len(History(orders, 5)); n != 5 {
		t.Fatalf("expected explicit limit to apply, got %d", n)
	}
	if n := len(History(orders, 100)); n != HistoryLimit {
		t.Fatalf("expected limit above %d to be clamped, got %d", HistoryLimit, n)
	}
}

func TestProjectionsDoNotMutate(t *testing.T) {
	doc := store.Default()
	doc.Orders = []domain.Order{
		{ID: "x", Status: domain.StatusReady, CreatedAt: 2},
		{ID: "y", Status: domain.StatusAwaitingCash, CreatedAt: 1},
	}
	_ = ActiveQueue(doc.Orders)
	_ = History(doc.Orders, 1)
	_ = VisibleMenu(doc)
	if doc.Orders[0].ID != "x" || doc.Orders[1].ID != "y" {
		t.Fatalf("projections reordered the source orders")
	}
}

func TestFindOrder(t *testing.T) {
	doc := store.Default()
	doc.Orders = []domain.Order{{ID: "ord_1", TokenNumber: 101}}
	if o, ok := FindOrder(doc.Orders, "ord_1"); !ok || o.TokenNumber != 101 {
		t.Fatalf("expected to find ord_1")
	}
	if _, ok := FindOrder(doc.Orders, "ord_2"); ok {
		t.Fatalf("did not expect ord_2")
	}
}

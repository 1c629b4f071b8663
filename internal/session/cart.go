package session

import (
	"context"
	"fmt"
	"slices"

	"canteen-system/internal/domain"
	"canteen-system/internal/view"
)

// AddToCart adds one unit of itemID. Unknown, hidden and sold-out items are
// refused, as is a line already at its per-item limit.
func (s *Session) AddToCart(ctx context.Context, itemID string) ([]domain.CartItem, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	doc := s.State()
	card, ok := view.Card(doc, itemID)
	switch {
	case !ok:
		return doc.Cart, fmt.Errorf("%w: menu item %s", domain.ErrNotFound, itemID)
	case !card.Stock.Available || card.OutOfStock:
		return doc.Cart, fmt.Errorf("%w: %s", domain.ErrUnavailable, card.Item.Name)
	case !card.CanAdd():
		return doc.Cart, fmt.Errorf("%w: at most %d %s", domain.ErrLimitReached, card.MaxAllowed, card.Item.Name)
	}

	cart := slices.Clone(doc.Cart)
	if i := slices.IndexFunc(cart, func(l domain.CartItem) bool { return l.ID == itemID }); i >= 0 {
		cart[i].Qty++
	} else {
		cart = append(cart, domain.CartItem{MenuItem: card.Item, Qty: 1})
	}
	return s.writeCart(ctx, cart)
}

// RemoveFromCart takes one unit of itemID out, dropping the line at zero.
func (s *Session) RemoveFromCart(ctx context.Context, itemID string) ([]domain.CartItem, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	cart := slices.Clone(s.State().Cart)
	i := slices.IndexFunc(cart, func(l domain.CartItem) bool { return l.ID == itemID })
	if i < 0 {
		return cart, nil
	}
	if cart[i].Qty > 1 {
		cart[i].Qty--
	} else {
		cart = slices.Delete(cart, i, i+1)
	}
	return s.writeCart(ctx, cart)
}

func (s *Session) ClearCart(ctx context.Context) error {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	_, err := s.writeCart(ctx, []domain.CartItem{})
	return err
}

// ReplaceCart stores items as the whole cart.
func (s *Session) ReplaceCart(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	return s.writeCart(ctx, items)
}

func (s *Session) writeCart(ctx context.Context, cart []domain.CartItem) ([]domain.CartItem, error) {
	cart = domain.NormalizeCart(cart)
	if err := s.cmds.SetCart(ctx, cart); err != nil {
		return nil, err
	}
	s.apply(func(doc *domain.Document) { doc.Cart = slices.Clone(cart) })
	return cart, nil
}

// SubmitOrder checks out the current cart, pricing it from the snapshot.
func (s *Session) SubmitOrder(ctx context.Context, mode domain.PaymentMode, studentName string) (domain.Order, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	cart := s.State().Cart
	if len(cart) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	order, err := s.cmds.PlaceOrder(ctx, domain.PlaceOrderInput{
		Items: cart, Total: view.CartTotal(cart), Mode: mode, StudentName: studentName,
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.Refresh(ctx)
	return order, nil
}

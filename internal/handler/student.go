package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
	"canteen-system/internal/session"
	"canteen-system/internal/view"
)

type cartResponse struct {
	Items    []view.CartLine `json:"items"`
	Total    float64         `json:"total"`
	Quantity int             `json:"quantity"`
}

func newCartResponse(cart []domain.CartItem) cartResponse {
	return cartResponse{Items: view.CartLines(cart), Total: view.CartTotal(cart), Quantity: view.CartQuantity(cart)}
}

type lineRequest struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type orderResponse struct {
	domain.Order
	QueuePosition int    `json:"queuePosition,omitempty"`
	NextAction    string `json:"nextAction,omitempty"`
}

func newOrderResponse(o domain.Order, queue []domain.Order) orderResponse {
	out := orderResponse{Order: o, NextAction: lifecycle.ActionLabel(o.Status)}
	for i, q := range queue {
		if q.ID == o.ID {
			out.QueuePosition = i + 1
			break
		}
	}
	return out
}

// getState returns the shared document without the staff credentials.
func (h *Handler) getState(w http.ResponseWriter, _ *http.Request) {
	doc := h.sess.State()
	doc.StaffPin = ""
	doc.AdminMobile = ""
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) getMenu(w http.ResponseWriter, _ *http.Request) {
	doc := h.sess.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         view.VisibleMenu(doc),
		"paymentConfig": doc.PaymentConfig,
	})
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(h.sess.State().Cart))
}

// replaceCart prices each requested line from the current catalog.
func (h *Handler) replaceCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []lineRequest `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := resolveLines(h.sess.State(), req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := h.sess.ReplaceCart(r.Context(), items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.ClearCart(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(nil))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.sess.AddToCart(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.sess.RemoveFromCart(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

type checkoutRequest struct {
	PaymentMode string `json:"paymentMode"`
	StudentName string `json:"studentName"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	mode, err := domain.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	order, err := h.sess.SubmitOrder(r.Context(), mode, req.StudentName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order, view.ActiveQueue(h.sess.State().Orders)))
}

// placeOrder checks out an explicit list of lines. total defaults to the
// catalog price of the lines.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items       []lineRequest `json:"items"`
		Total       *float64      `json:"total"`
		PaymentMode string        `json:"paymentMode"`
		StudentName string        `json:"studentName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	mode, err := domain.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := resolveLines(h.sess.State(), req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(items) == 0 {
		h.writeError(w, r, domain.ErrEmptyCart)
		return
	}
	total := view.CartTotal(items)
	if req.Total != nil {
		total = *req.Total
	}

	var order domain.Order
	err = h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		var err error
		order, err = c.PlaceOrder(ctx, domain.PlaceOrderInput{Items: items, Total: total, Mode: mode, StudentName: req.StudentName})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order, view.ActiveQueue(h.sess.State().Orders)))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order_id")
	orders := h.sess.State().Orders
	o, ok := view.FindOrder(orders, id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o, view.ActiveQueue(orders)))
}

// resolveLines turns id/qty pairs into normalized cart lines priced from
// doc's catalog.
func resolveLines(doc domain.Document, lines []lineRequest) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, 0, len(lines))
	for _, l := range lines {
		item, ok := doc.FindMenuItem(l.ID)
		if !ok {
			return nil, fmt.Errorf("%w: menu item %s", domain.ErrNotFound, l.ID)
		}
		out = append(out, domain.CartItem{MenuItem: item, Qty: l.Qty})
	}
	return domain.NormalizeCart(out), nil
}

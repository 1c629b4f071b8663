package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
	"canteen-system/internal/session"
	"canteen-system/internal/view"
)

type queueEntry struct {
	domain.Order
	Priority   int    `json:"priority"`
	NextAction string `json:"nextAction,omitempty"`
}

func (h *Handler) getQueue(w http.ResponseWriter, _ *http.Request) {
	queue := view.ActiveQueue(h.sess.State().Orders)
	out := make([]queueEntry, len(queue))
	for i, o := range queue {
		out[i] = queueEntry{Order: o, Priority: lifecycle.Priority(o.Status), NextAction: lifecycle.ActionLabel(o.Status)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := atoiDefault(r.URL.Query().Get("limit"), view.HistoryLimit)
	writeJSON(w, http.StatusOK, map[string]any{"orders": view.History(h.sess.State().Orders, limit)})
}

// setOrderStatus answers 404 only after the command, since the command
// itself treats an unknown id as a no-op.
func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order_id")
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	err = h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		return c.SetOrderStatus(ctx, id, status)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders := h.sess.State().Orders
	o, ok := view.FindOrder(orders, id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o, view.ActiveQueue(orders)))
}

func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.sess.AdvanceOrder)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.sess.CancelOrder)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (domain.Order, bool, error)) {
	o, found, err := fn(r.Context(), chi.URLParam(r, "order_id"))
	switch {
	case !found:
		writeProblem(w, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, newOrderResponse(o, view.ActiveQueue(h.sess.State().Orders)))
	}
}

type stockPatch struct {
	domain.StockUpdate
	// Delta adjusts the remaining quantity relative to the current value. It
	// cannot be combined with the absolute fields.
	Delta *int `json:"delta,omitempty"`
}

func (h *Handler) patchStock(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	var req stockPatch
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Delta != nil {
		if req.Available != nil || req.StockQty != nil || req.TrackStock != nil {
			writeProblem(w, http.StatusBadRequest, "invalid_input", "delta cannot be combined with other stock fields")
			return
		}
		st, err := h.sess.AdjustStock(r.Context(), itemID, *req.Delta)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
		return
	}
	var out domain.DailyStock
	err := h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		var err error
		out, err = c.SetStock(ctx, itemID, req.StockUpdate)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) toggleStock(w http.ResponseWriter, r *http.Request) {
	st, err := h.sess.ToggleAvailability(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type menuItemRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       flexPrice `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
}

func (h *Handler) addMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	price, err := req.Price.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var item domain.MenuItem
	err = h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		var err error
		item, err = c.AddMenuItem(ctx, domain.NewMenuItem{Name: req.Name, Price: price, Image: req.Image, Category: req.Category})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) upsertMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	price, err := req.Price.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item := domain.MenuItem{
		ID:          chi.URLParam(r, "item_id"),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		BasePrice:   price,
		Image:       req.Image,
		Category:    req.Category,
	}
	err = h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		return c.UpsertMenuItem(ctx, item)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) staffLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.sess.Commands().CheckStaffPin(r.Context(), req.Pin) {
		h.lg.Warn("staff_login_rejected", map[string]any{"remote_addr": r.RemoteAddr})
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "wrong staff pin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) resetPin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
		NewPin string `json:"newPin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := domain.ValidatePin(req.NewPin); err != nil {
		h.writeError(w, r, err)
		return
	}
	err := h.sess.Do(r.Context(), func(ctx context.Context, c session.Commands) error {
		return c.ResetStaffPin(ctx, strings.TrimSpace(req.Mobile), req.NewPin)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := domain.ValidatePin(req.Pin); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.command(w, r, func(ctx context.Context, c session.Commands) error { return c.SetStaffPin(ctx, req.Pin) })
}

func (h *Handler) setAdminMobile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	mobile := strings.TrimSpace(req.Mobile)
	if err := domain.ValidateMobile(mobile); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.command(w, r, func(ctx context.Context, c session.Commands) error { return c.SetAdminContact(ctx, mobile) })
}

func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentConfig
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.command(w, r, func(ctx context.Context, c session.Commands) error { return c.SetPaymentConfig(ctx, req) })
}

// command runs fn and answers 204 on success.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, fn func(context.Context, session.Commands) error) {
	if err := h.sess.Do(r.Context(), fn); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

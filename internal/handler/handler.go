// Package handler is the HTTP surface over a live session: student menu and
// cart endpoints, order tracking, and a PIN-gated staff console.
package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"canteen-system/internal/common/logger"
	"canteen-system/internal/session"
)

// StaffPinHeader carries the staff PIN on console requests.
const StaffPinHeader = "X-Staff-Pin"

type Handler struct {
	sess      *session.Session
	lg        *logger.Logger
	keepalive time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func New(sess *session.Session, lg *logger.Logger) *Handler {
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Handler{sess: sess, lg: lg, keepalive: 15 * time.Second, done: make(chan struct{})}
}

// CloseStreams ends every open event stream. http.Server.Shutdown does not
// cancel request contexts, so register this with RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.getState)
		r.Get("/menu", h.getMenu)
		r.Get("/events", h.events)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Put("/", h.replaceCart)
			r.Delete("/", h.clearCart)
			r.Post("/items/{item_id}", h.addCartItem)
			r.Delete("/items/{item_id}", h.removeCartItem)
		})
		r.Post("/checkout", h.checkout)

		r.Post("/orders", h.placeOrder)
		r.Get("/orders/{order_id}", h.getOrder)

		r.Post("/staff/login", h.staffLogin)
		r.Post("/staff/reset-pin", h.resetPin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireStaff)

			r.Get("/queue", h.getQueue)
			r.Get("/history", h.getHistory)
			r.Put("/orders/{order_id}/status", h.setOrderStatus)
			r.Post("/orders/{order_id}/advance", h.advanceOrder)
			r.Post("/orders/{order_id}/cancel", h.cancelOrder)

			r.Patch("/stock/{item_id}", h.patchStock)
			r.Post("/stock/{item_id}/toggle", h.toggleStock)
			r.Post("/menu", h.addMenuItem)
			r.Put("/menu/{item_id}", h.upsertMenuItem)

			r.Put("/settings/pin", h.setPin)
			r.Put("/settings/admin-mobile", h.setAdminMobile)
			r.Put("/settings/payment", h.setPayment)
		})
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

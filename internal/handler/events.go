package handler

import (
	"fmt"
	"net/http"
	"time"

	"canteen-system/internal/domain"
)

// events streams one state_updated event per session refresh. Clients
// re-fetch whatever they render; the event carries no state.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	updates := make(chan struct{}, 1)
	stop := h.sess.OnRefresh(func(domain.Document) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := send(w, rc, "retry: 3000\n\n"); err != nil {
		h.lg.Warn("sse_unsupported", map[string]any{"error": err.Error()})
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()
	for {
		var msg string
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case <-updates:
			msg = fmt.Sprintf("event: %s\ndata: %d\n\n", domain.StateUpdated, time.Now().UnixMilli())
		case <-keepalive.C:
			msg = ": keepalive\n\n"
		}
		if err := send(w, rc, msg); err != nil {
			return
		}
	}
}

func send(w http.ResponseWriter, rc *http.ResponseController, msg string) error {
	if _, err := fmt.Fprint(w, msg); err != nil {
		return err
	}
	return rc.Flush()
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": status,
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			h.lg.Error("http_request", nil, fields)
		case status >= 400:
			h.lg.Warn("http_request", fields)
		default:
			h.lg.Debug("http_request", fields)
		}
	})
}

// requireStaff lets a request through only when it carries the current
// staff PIN.
func (h *Handler) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pin := r.Header.Get(StaffPinHeader)
		if !h.sess.Commands().CheckStaffPin(r.Context(), pin) {
			writeProblem(w, http.StatusUnauthorized, "unauthorized", "missing or wrong staff pin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"canteen-system/internal/domain"
	"canteen-system/internal/lifecycle"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes a simplified RFC 7807 body.
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, typ := mapError(err)
	if code >= 500 {
		h.lg.Error("request_failed", err, map[string]any{"method": r.Method, "path": r.URL.Path})
	}
	writeProblem(w, code, typ, err.Error())
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidPin):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, domain.ErrMobileMismatch):
		return http.StatusForbidden, "mobile_mismatch"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusConflict, "unavailable"
	case errors.Is(err, domain.ErrLimitReached):
		return http.StatusConflict, "limit_reached"
	case errors.Is(err, lifecycle.ErrTerminal):
		return http.StatusConflict, "terminal_status"
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON reads a single JSON value into dst. Unknown fields are
// rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}

// flexPrice accepts both 12.5 and "12.5"; the value is checked with
// domain.ParsePrice.
type flexPrice string

func (p *flexPrice) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = flexPrice(s)
		return nil
	}
	*p = flexPrice(b)
	return nil
}

func (p flexPrice) parse() (float64, error) { return domain.ParsePrice(string(p)) }

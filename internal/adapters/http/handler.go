package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jokel/beehive-mapper/internal/domain"
)

func (h *Handler) greet(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, h.service.Greet(r.Context()))
}

func (h *Handler) beeData(w http.ResponseWriter, r *http.Request) {
	var msg domain.InboundMessage
	if err := decodeJSONBody(w, r, h.maxBodyBytes, &msg); err != nil {
		status, code, message := mapDomainError(err)
		logHTTPOperationError(r.Context(), "accept_bee_data", status, code, message, err)
		writeError(w, status, code, message, requestIDFromContext(r.Context()))
		return
	}
	writeText(w, http.StatusOK, h.service.AcceptBeeData(r.Context(), msg))
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.service.Ready() {
		writeText(w, http.StatusServiceUnavailable, "draining")
		return
	}
	writeText(w, http.StatusOK, "ready")
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return wrapDecodeError(err)
	}
	// The body must hold exactly one JSON value.
	err := dec.Decode(&struct{}{})
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return fmt.Errorf("%w: decode json body: unexpected data after json value", domain.ErrInvalidInput)
	default:
		return wrapDecodeError(err)
	}
}

func wrapDecodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: body exceeds %d bytes", domain.ErrPayloadTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: decode json body: %v", domain.ErrInvalidInput, err)
}

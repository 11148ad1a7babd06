package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// marshalFailureBody is sent when a response value cannot be encoded. It
// keeps the {"detail": ...} error shape every gateway error uses.
const marshalFailureBody = `{"detail":"internal error"}`

// WriteJSON encodes data and writes it with statusCode. Gateway responses
// describe the caller's session, so Cache-Control defaults to no-store
// unless the handler has chosen a policy.
//
// If encoding fails a 500 with a generic detail is written instead and the
// encoding error is returned for logging.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", "no-store")
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(marshalFailureBody))
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.WriteHeader(statusCode)
	return w.Write(body)
}

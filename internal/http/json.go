// Package httpx provides the webhook HTTP boundary: routing, middleware,
// and JSON helpers.
package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// maxEventBodyBytes caps inbound webhook payloads. Event payloads are small
// key/value maps; anything bigger is not a business event.
const maxEventBodyBytes = 1 << 20

// errorResponse mirrors the ack shape webhook callers already parse: a
// success flag plus a stable machine code and a human message.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeJSON decodes the request body into dst, bounding the body size.
// Returns false after writing the error response when decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxEventBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
// The payload is encoded before headers go out so an encoding failure can
// still produce a 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client went away mid-write; nothing left to do.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorResponse{
		Success: false,
		Error:   p.ErrCode,
		Message: p.Err.Error(),
	})
}

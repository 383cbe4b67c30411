package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, msg string, data any) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Message: msg, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeEnvelope(w, status, envelope{Success: false, Message: msg})
}

// writeInternal reports a server fault with a generic prefixed message.
// Detail stays in the logs; nothing store-level crosses this boundary.
func writeInternal(w http.ResponseWriter, msg string) {
	writeFailure(w, http.StatusInternalServerError, "Internal: "+msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}

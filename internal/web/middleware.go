package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// withLogging wraps a handler with request logging.
func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		next(w, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes a JSON error response.
func errorResponse(w http.ResponseWriter, statusCode int, message string) {
	jsonResponse(w, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// parseJSONBody parses the request body into the given struct.
func parseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

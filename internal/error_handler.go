package internal

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/ssr/pkg/engine"
)

// ErrorHandler receives render failures. w is nil when the response had
// already started; next continues to the wrapped handler, if any.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, next func())

// DefaultErrorHandler responds 404 when the engine reported a not-found
// status and 500 otherwise. Missing favicons are only logged.
func DefaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error, _ func()) {
		url := requestURI(r)

		if engine.StatusCode(err) == http.StatusNotFound && w != nil {
			writeText(w, http.StatusNotFound, "404 | Page Not Found")
			return
		}

		if strings.Contains(url, ".ico") {
			log.WarnContext(r.Context(), "page not found", slog.String("url", url))
			return
		}

		if w != nil {
			writeText(w, http.StatusInternalServerError, "500 | Internal Server Error")
		}
		log.ErrorContext(r.Context(), "error during render",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

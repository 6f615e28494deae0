package middleware

import (
	"net/http"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"
)

// TracingMiddleware starts a server span per request, named by method and path
func TracingMiddleware(next http.Handler) http.Handler {
	return &ochttp.Handler{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if span := trace.FromContext(r.Context()); span != nil {
				if id := RequestIDFromContext(r.Context()); id != "" {
					span.AddAttributes(trace.StringAttribute("request.id", id))
				}
			}
			next.ServeHTTP(w, r)
		}),
		FormatSpanName: func(r *http.Request) string {
			return r.Method + " " + r.URL.Path
		},
	}
}

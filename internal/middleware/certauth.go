// Package middleware provides HTTP middlewares for client identity and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/xenon/internal/backend"
)

type ctxKey string

const clientKey ctxKey = "client"

// CertAuth returns a middleware that records the Common Name of the TLS
// client certificate in the request context.
//
// When required is true, requests without a verified client certificate are
// rejected with 401 and an unauthorized error body. Otherwise they pass
// through with an empty identity, which is how the server runs over plain
// HTTP in development.
func CertAuth(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
				if required {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_ = json.NewEncoder(w).Encode(backend.ErrorResponse{
						Error:   backend.CodeUnauthorized,
						Message: "no client certificate provided",
					})
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			cert := r.TLS.PeerCertificates[0]
			ctx := context.WithValue(r.Context(), clientKey, cert.Subject.CommonName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientFromContext returns the client certificate Common Name stored by
// CertAuth, or an empty string.
func ClientFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(clientKey).(string); ok {
		return s
	}
	return ""
}

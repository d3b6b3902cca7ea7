package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"tutorhub/pkg/logger"
)

// BearerAuth guards a handler chain with a shared bearer secret. Requests
// missing or mismatching the secret are rejected before any handler runs,
// so an unauthorized dispatch trigger never touches data.
func BearerAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)

			if token == "" {
				logAndRejectUnauthorized(w, log, r, "Missing Authorization bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logAndRejectUnauthorized(w, log, r, "Invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}

func logAndRejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID = rid.(string)
	}

	log.Warn("Bearer authentication failed",
		"request_id", requestID,
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}

package middleware

import (
	"net/http"
)

// SecurityHeaders sets the response headers shared by every API route.
// HSTS is only sent when the service is behind HTTPS. An empty csp omits the header.
func SecurityHeaders(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "no-referrer")
			headers.Set("Cache-Control", "no-store")
			if csp != "" {
				headers.Set("Content-Security-Policy", csp)
			}
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIContentSecurityPolicy forbids the JSON API from being framed or rendered as a document.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

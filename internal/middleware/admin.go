package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
)

// AdminAuth gates the administrative surface behind the single shared
// credential from ADMIN_USERNAME / ADMIN_PASSWORD. This is separate from
// per-channel feed auth.
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminUser := os.Getenv("ADMIN_USERNAME")
		adminPassword := os.Getenv("ADMIN_PASSWORD")
		if adminUser == "" || adminPassword == "" {
			log.Println("ADMIN_USERNAME or ADMIN_PASSWORD is not set")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || !constantTimeEqual(username, adminUser) || !constantTimeEqual(password, adminPassword) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			http.Error(w, "Administrative credentials required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

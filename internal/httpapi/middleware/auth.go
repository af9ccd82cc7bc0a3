package middleware

import (
	"net/http"
	"strings"
)

// Keys holds the configured API keys. Viewer keys can read dashboard data;
// admin keys can also change the catalog and restore state.
type Keys struct {
	Viewer []string
	Admin  []string
}

func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func matches(given string, set []string) bool {
	if given == "" {
		return false
	}
	for _, k := range set {
		if k == given {
			return true
		}
	}
	return false
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// RequireViewer accepts any configured key, viewer or admin. With no keys
// configured at all the API is open, which keeps local runs friction-free.
func RequireViewer(keys Keys) func(http.Handler) http.Handler {
	open := len(keys.Viewer) == 0 && len(keys.Admin) == 0
	return func(next http.Handler) http.Handler {
		if open {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := presentedKey(r)
			if matches(k, keys.Viewer) || matches(k, keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAdmin accepts only admin keys. With no admin keys configured it
// is open.
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	open := len(keys.Admin) == 0
	return func(next http.Handler) http.Handler {
		if open {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matches(presentedKey(r), keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusForbidden, "forbidden")
		})
	}
}

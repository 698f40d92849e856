package main

import (
	"fmt"
	"net/http"
)

// RequireAdmin gates mutating routes behind the shared admin secret. The key
// arrives as the ?key= query parameter or a key form field; every request is
// checked independently.
func (app *application) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := app.guard.FromRequest(r)
		if !app.guard.Verify(key) {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr)
			if !allow {
				app.rateLimitExceededResponse(w, r, fmt.Sprintf("%.0f", retryAfter.Seconds()))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// isAdmin reports whether the request carries a valid admin key; list
// endpoints use it to decide between the public view and the full view.
func (app *application) isAdmin(r *http.Request) bool {
	return app.guard.Verify(app.guard.FromRequest(r))
}

package httpx

import (
	"net/http"
	"strings"

	"github.com/agencydesk/autopilot/pkg/jwtx"
	"github.com/agencydesk/autopilot/pkg/slogx"
)

// SessionCookieName is the cookie the login endpoint sets and the authn
// middleware falls back to when no Authorization header is present.
const SessionCookieName = "autopilot_session"

// AuthnMiddleware verifies the session token (Bearer header or session
// cookie) and injects the user id into the request context. Requests without
// a valid session get a 401 with a WWW-Authenticate header.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := ExtractSessionToken(r)
			if raw == "" {
				writeBearerError(w, "missing session token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("session verify failed", "err", err)
				writeBearerError(w, "session verification failed")
				return
			}

			ctx = ContextWithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractSessionToken returns the session token from the Authorization
// header, falling back to the session cookie. Empty when neither is present.
func ExtractSessionToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RFC 6750-style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}

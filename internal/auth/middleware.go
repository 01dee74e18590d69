package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "session"

// UserLookup resolves the account behind a session token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// SessionMiddleware resolves the caller from the session cookie (or a Bearer
// token) and stores the principal in the request context. Requests without a
// valid session continue anonymously.
func SessionMiddleware(tokens *TokenManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ValidateJWT(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Ignoring invalid session token")
				next.ServeHTTP(w, r)
				return
			}

			// Role is read from the store on every request, never trusted from the token.
			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Session user not found")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{User: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	// 1. Try to get the token from the Authorization header
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if tok, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	// 2. If not in header, fall back to the cookie
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Require composes Check in front of a handler. Anonymous callers are
// redirected to loginPath with a next parameter; authenticated callers lacking
// the capability get 403 and the handler never runs.
func Require(c Capability, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			switch Check(p, c) {
			case Allowed:
				next.ServeHTTP(w, r)
			case RedirectToLogin:
				target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
			default:
				var userID string
				if p != nil {
					userID = p.User.ID
				}
				log.Warn().Str("user_id", userID).Str("path", r.URL.Path).
					Str("capability", c.String()).Msg("Access denied")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
			}
		})
	}
}

// SetSessionCookie stores the session token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

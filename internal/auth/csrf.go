package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// SameOriginMiddleware rejects cross-site mutations. A POST, PUT, PATCH or
// DELETE must carry an Origin (or, failing that, a Referer) naming this host or
// one of trustedOrigins. Requests with neither header are only accepted when
// they carry no session cookie, i.e. they come from a non-browser client.
func SameOriginMiddleware(trustedOrigins []string) func(http.Handler) http.Handler {
	trusted := make(map[string]bool, len(trustedOrigins))
	for _, o := range trustedOrigins {
		trusted[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutationMethod(r.Method) || hasSameOriginProof(r, trusted) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn().Str("path", r.URL.Path).Str("origin", r.Header.Get("Origin")).
				Str("referer", r.Referer()).Msg("Rejected cross-site request")
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func isMutationMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func hasSameOriginProof(r *http.Request, trusted map[string]bool) bool {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		return sameOrigin(origin, r, trusted)
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		return sameOrigin(referer, r, trusted)
	}
	_, err := r.Cookie(SessionCookieName)
	return err != nil
}

func sameOrigin(rawURL string, r *http.Request, trusted map[string]bool) bool {
	if rawURL == "" || rawURL == "null" {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if strings.EqualFold(parsed.Host, r.Host) {
		return true
	}
	return trusted[parsed.Scheme+"://"+parsed.Host]
}

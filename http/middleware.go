package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sagarc03/neocities"
)

// Authenticator resolves request credentials to a site.
type Authenticator interface {
	AuthenticateKey(ctx context.Context, apiKey string) (neocities.Site, error)
	AuthenticatePassword(ctx context.Context, sitename, password string) (neocities.Site, error)
}

type siteKey struct{}

// WithSite returns a new context carrying the authenticated site.
func WithSite(ctx context.Context, site neocities.Site) context.Context {
	return context.WithValue(ctx, siteKey{}, site)
}

// SiteFromContext returns the site stored by AuthMiddleware.
func SiteFromContext(ctx context.Context) (neocities.Site, bool) {
	site, ok := ctx.Value(siteKey{}).(neocities.Site)
	return site, ok
}

// Authenticate checks a bearer API key or HTTP basic sitename/password.
// A bearer token wins when both are sent.
func Authenticate(r *http.Request, auth Authenticator) (neocities.Site, error) {
	header := r.Header.Get("Authorization")

	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return auth.AuthenticateKey(r.Context(), strings.TrimSpace(token))
	}

	if sitename, password, ok := r.BasicAuth(); ok {
		return auth.AuthenticatePassword(r.Context(), sitename, password)
	}

	return neocities.Site{}, fmt.Errorf("authenticate: %w: no credentials", ErrUnauthorized)
}

// AuthMiddleware rejects requests without valid credentials with 403
// invalid_auth and stores the authenticated site in the request context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site, err := Authenticate(r, auth)
			if err != nil {
				HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), site)))
		})
	}
}

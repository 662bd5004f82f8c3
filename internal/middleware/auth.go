package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gallery/service/internal/auth"
	"github.com/gallery/service/internal/policy"
	"github.com/gallery/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// identityKey is the context key for the verified caller identity.
const identityKey contextKey = "identity"

// Identity is the verified caller identity injected by RequireAuth.
type Identity struct {
	Subject string
	Email   string
	Groups  []string
}

// WithIdentity returns a context carrying the given caller identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFrom extracts the caller identity set by RequireAuth.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*Identity)
	return ident, ok
}

// RequireAuth returns middleware that verifies the Bearer token and injects
// the caller identity into the request context. Verification failures never
// fall through: an unconfigured verifier is a server error, not open access.
func RequireAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.Verify(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					response.Unauthorized(w, "missing bearer token")
				case errors.Is(err, auth.ErrNotConfigured):
					response.Error(w, http.StatusInternalServerError, "auth not configured")
				default:
					response.Unauthorized(w, "invalid token", err.Error())
				}
				return
			}

			ctx := WithIdentity(r.Context(), &Identity{
				Subject: claims.Subject,
				Email:   claims.Email,
				Groups:  claims.Groups,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAllowedDomain returns middleware gating requests on the email-domain
// allow-list. Must run after RequireAuth.
func RequireAllowedDomain(allowedDomains []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFrom(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}
			if !policy.EmailDomainAllowed(ident.Email, allowedDomains) {
				response.Forbidden(w, "email domain not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

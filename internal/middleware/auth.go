package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GRuizV/socialapi/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	claimsKey
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*models.TokenClaims, error)
}

// RevocationChecker reports whether a token ID has been denylisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserResolver loads the user a token claims to be.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth validates the bearer token, rejects revoked tokens,
// resolves the claimed user and injects user and claims into the request
// context. Every failure is a uniform 401: callers learn nothing about
// whether a token was forged, expired, revoked or orphaned by a deleted
// user.
func RequireAuth(tokens TokenVerifier, revoked RevocationChecker, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, prefix) {
				ErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if rev, err := revoked.IsRevoked(r.Context(), claims.TokenID); err != nil || rev {
				ErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil || user == nil {
				ErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = WithClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by RequireAuth, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithClaims stores the verified token claims in the context.
func WithClaims(ctx context.Context, c *models.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom returns the verified token claims stored by RequireAuth, or
// nil.
func ClaimsFrom(ctx context.Context) *models.TokenClaims {
	c, _ := ctx.Value(claimsKey).(*models.TokenClaims)
	return c
}

package middleware

import (
	"context"
	"net/http"

	"devconnector-server/pkg/jwt"
	"devconnector-server/pkg/response"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenHeader carries the bearer token on protected requests.
const TokenHeader = "x-auth-token"

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

type TokenVerifier interface {
	Verify(token string) (*jwt.Identity, error)
}

// AuthMiddleware lets a request through only with a verifiable token, and
// attaches the decoded identity to its context. Every verification failure
// gets the same response.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				response.Unauthorized(w, msgNoToken)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				response.Unauthorized(w, msgInvalidToken)
				return
			}

			recordUser(r.Context(), identity.ID)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity jwt.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (jwt.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(jwt.Identity)
	return identity, ok
}

func GetUserID(r *http.Request) string {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return ""
	}
	return identity.ID
}

package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const bearerPrefix = "Bearer "

// BearerStage admits requests carrying a valid access token in the
// Authorization header and stores its claims in the request context.
// It never touches the store.
func BearerStage(v jwtx.Verifier) Stage {
	return func(r *http.Request) Decision {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, bearerPrefix) {
			return Reject(Unauthorized())
		}

		claims, err := v.Verify(strings.TrimPrefix(authz, bearerPrefix))
		if err != nil {
			slogx.FromContext(r.Context()).Debug("bearer token rejected", "err", err)
			return Reject(Unauthorized())
		}

		ctx := WithClaims(r.Context(), claims)
		ctx = slogx.WithAttrs(ctx, "sub", claims.Subject)
		return Admit(r.WithContext(ctx))
	}
}

// Unauthorized is the bearer challenge: 401, WWW-Authenticate: Bearer,
// no body.
func Unauthorized() Rejection {
	return Rejection{
		Status: http.StatusUnauthorized,
		Header: http.Header{"Www-Authenticate": []string{"Bearer"}},
	}
}

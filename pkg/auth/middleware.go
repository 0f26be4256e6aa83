package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/chainsafe/standard-bridge/pkg/app/errors"
	apphttp "github.com/chainsafe/standard-bridge/pkg/app/http"
)

// RequireToken is a chi-compatible middleware that validates the bearer token
// and puts the authenticated actor address into the request context.
func RequireToken(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing authorization header"))
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "authorization header must use Bearer scheme"))
				return
			}

			actor, err := tokens.ValidateToken(tokenString)
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

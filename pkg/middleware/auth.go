package middleware

import (
	"errors"
	"net/http"
	"strings"

	apperrors "auravindex/pkg/errors"
	"auravindex/pkg/logger"
	"auravindex/pkg/sanitizer"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingSubject = errors.New("token has no subject")

// RequesterAuth resolves who is calling and stores it in the request context.
// With a secret, an HS256 bearer token is required and its subject is the requester.
// Without one, the X-Requester-ID header is trusted (for local and internal deployments).
func RequesterAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var requester string
			if secret == "" {
				requester = r.Header.Get(HeaderRequesterID)
			} else {
				sub, err := subjectFromBearer(r.Header.Get("Authorization"), secret)
				if err != nil {
					log.Warn("Rejected bearer token",
						"request_id", RequestIDFromContext(r.Context()),
						"path", r.URL.Path,
						"error", err,
					)
					writeJSONError(w, apperrors.CodeUnauthorized, "Unauthorized")
					return
				}
				requester = sub
			}

			requester = sanitizer.NormalizeIdentifier(requester)
			if requester == "" {
				writeJSONError(w, apperrors.CodeUnauthorized, "Requester identity is required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
		})
	}
}

func subjectFromBearer(header, secret string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errors.New("missing bearer token")
	}

	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

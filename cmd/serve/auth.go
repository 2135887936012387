package serve

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewToken mints an HS256 bearer token accepted by a server started with
// the same secret.
func NewToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "morselamp",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// requireToken rejects requests without a valid bearer token. An empty
// secret disables the check.
func requireToken(secret string, next http.HandlerFunc) http.HandlerFunc {
	if secret == "" {
		return next
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="morselamp"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{"missing bearer token"})
			return
		}
		_, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{fmt.Sprintf("invalid token: %v", err)})
			return
		}
		next(w, r)
	}
}

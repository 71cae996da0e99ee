package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/requestcontext"
)

// CallerClaims is the token payload binding a request to a ledger address.
// The address plays the role the transaction sender plays on chain: it is
// the implicit caller identity for every owner-scoped operation.
type CallerClaims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// TokenVerifier validates bearer tokens and extracts the caller address.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey)}
}

// Verify parses and validates a token, returning the caller address.
func (v *TokenVerifier) Verify(tokenString string) (id.Address, error) {
	var claims CallerClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token invalid")
	}
	addr, err := id.ParseAddress(claims.Address)
	if err != nil {
		return "", fmt.Errorf("addr claim: %w", err)
	}
	return addr, nil
}

// Sign mints a token for an address. Used by tests and local tooling; in
// production tokens come from the wallet-auth front door.
func (v *TokenVerifier) Sign(addr id.Address) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerClaims{Address: addr.String()})
	return token.SignedString(v.signingKey)
}

// RequireCaller rejects requests without a valid bearer token and injects
// the caller address into the request context.
func RequireCaller(verifier *TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, "missing bearer token")
				return
			}
			addr, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(r.Context(), "caller token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				writeAuthError(w, "invalid bearer token")
				return
			}
			ctx := requestcontext.WithCaller(r.Context(), addr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller retrieves the authenticated caller address from the context.
func GetCaller(r *http.Request) id.Address {
	return requestcontext.Caller(r.Context())
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    string(dErrors.CodeUnauthenticated),
		"message": msg,
	})
}

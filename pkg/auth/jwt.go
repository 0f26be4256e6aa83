// Package auth authenticates admin API callers. Tokens are HMAC-signed JWTs
// carrying the operator's on-chain actor address; the core role registry still
// decides what that address may do.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chainsafe/standard-bridge/pkg/config"
)

const actorClaim = "actor"

// TokenService issues and validates admin API tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a token service from the API config.
func NewTokenService(cfg *config.APIConfig) *TokenService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    ttl,
	}
}

// Issue creates a signed token binding the operator's actor address.
func (s *TokenService) Issue(actor common.Address) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      s.issuer,
		"sub":      strings.ToLower(actor.Hex()),
		actorClaim: actor.Hex(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns the actor address it carries.
func (s *TokenService) ValidateToken(tokenString string) (common.Address, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return common.Address{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return common.Address{}, fmt.Errorf("invalid claims type")
	}

	if s.issuer != "" {
		iss, ok := claims["iss"].(string)
		if !ok || iss != s.issuer {
			return common.Address{}, fmt.Errorf("invalid issuer")
		}
	}

	actorHex, ok := claims[actorClaim].(string)
	if !ok || !common.IsHexAddress(actorHex) {
		return common.Address{}, fmt.Errorf("missing or malformed actor claim")
	}

	return common.HexToAddress(actorHex), nil
}

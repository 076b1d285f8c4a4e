package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"shortr/internal/platform/config"
)

const (
	ScopeLinksWrite = "links:write"
	issuer          = "shortr"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Scopes []string `json:"scp"`
	jwt.RegisteredClaims
}

func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// TokenService signs and checks the bearer tokens that guard the management
// API. It is disabled when no secret is configured.
type TokenService struct {
	config config.AuthConfig
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &TokenService{config: cfg}
}

func (s *TokenService) Enabled() bool {
	return s != nil && s.config.Secret != ""
}

func (s *TokenService) GenerateToken(subject string, scopes []string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("auth secret is not configured")
	}

	now := time.Now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

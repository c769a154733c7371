package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/shop_api/internal/models"
)

var (
	ErrMissingToken   = errors.New("missing token")
	ErrExpiredToken   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")
)

const DefaultLifetime = 24 * time.Hour

type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

// NewService fails unless alg names an HMAC method and secret is non-empty.
func NewService(secret []byte, alg string, lifetime time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty secret")
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(alg)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("tokens: unsupported algorithm %q", alg)
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Service{
		secret:   secret,
		method:   method,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}

func (s *Service) Issue(username string, role models.Role) (string, error) {
	return s.IssueWithLifetime(username, role, s.lifetime)
}

func (s *Service) IssueWithLifetime(username string, role models.Role, lifetime time.Duration) (string, error) {
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) Validate(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case !parsed.Valid || claims.Username == "":
		return nil, ErrMalformedToken
	}
	return &claims, nil
}

// FromHeader extracts the token from an "Authorization: Bearer <token>" value.
func FromHeader(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

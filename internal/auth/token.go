// Package auth issues and verifies bearer tokens and carries the verified
// identity through request contexts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"cafebook/internal/apierror"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tags a token as usable for API calls or only for renewal.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Identity is what a token asserts about its bearer.
type Identity struct {
	EmployeeID uint
	Phone      string
	Name       string
	RoleID     uint
}

// Claims are the custom claims embedded in every token.
type Claims struct {
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	RoleID     uint   `json:"role_id"`
	EmployeeID uint   `json:"employee_id"`
	Type       Kind   `json:"type"`
	jwt.RegisteredClaims
}

// Identity returns the identity part of the claims.
func (c *Claims) Identity() Identity {
	return Identity{EmployeeID: c.EmployeeID, Phone: c.Phone, Name: c.Name, RoleID: c.RoleID}
}

// TokenConfig is built once from config.Config in main.
type TokenConfig struct {
	Secret     string
	Algorithm  string // HS256 | HS384 | HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access lifetime, seconds
}

// TokenService signs and verifies tokens. It holds no state besides its
// configuration and clock, so it is safe for concurrent use.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService validates cfg and returns a service. now may be nil, in
// which case time.Now is used.
func NewTokenService(cfg TokenConfig, now func() time.Time) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	var method jwt.SigningMethod
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", alg)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithTimeFunc(now),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Issue signs a token of the given kind for id.
func (s *TokenService) Issue(id Identity, kind Kind) (string, error) {
	ttl := s.accessTTL
	if kind == KindRefresh {
		ttl = s.refreshTTL
	}
	now := s.now()
	claims := Claims{
		Phone:      id.Phone,
		Name:       id.Name,
		RoleID:     id.RoleID,
		EmployeeID: id.EmployeeID,
		Type:       kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Phone,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// IssuePair signs an access and a refresh token for id.
func (s *TokenService) IssuePair(id Identity) (TokenPair, error) {
	access, err := s.Issue(id, KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Issue(id, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL / time.Second),
	}, nil
}

// Verify checks signature, algorithm and expiry. Every failure is an
// *apierror.AuthError whose Reason is Expired, InvalidSignature or Malformed.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err == nil {
		return claims, nil
	}
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &apierror.AuthError{Reason: apierror.AuthExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, &apierror.AuthError{Reason: apierror.AuthInvalidSignature, Err: err}
	default:
		return nil, &apierror.AuthError{Reason: apierror.AuthMalformed, Err: err}
	}
}

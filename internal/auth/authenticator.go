package auth

import (
	"net/http"
	"strings"

	"cafebook/internal/apierror"
)

// Verifier is the part of TokenService the authenticator needs.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Authenticator turns an Authorization header into verified access claims.
// It never touches storage.
type Authenticator struct {
	tokens Verifier
}

func NewAuthenticator(tokens Verifier) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate extracts "Authorization: Bearer <token>" from r and verifies it.
// Refresh tokens are rejected with AuthWrongType.
func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, &apierror.AuthError{Reason: apierror.AuthMissing}
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return nil, &apierror.AuthError{Reason: apierror.AuthMalformed}
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != KindAccess {
		return nil, &apierror.AuthError{Reason: apierror.AuthWrongType}
	}
	return claims, nil
}

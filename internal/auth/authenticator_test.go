package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cafebook/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithAuth(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestAuthenticate(t *testing.T) {
	tokens := newTestTokens(t, nil)
	authn := NewAuthenticator(tokens)

	access, err := tokens.Issue(testIdentity, KindAccess)
	require.NoError(t, err)
	refresh, err := tokens.Issue(testIdentity, KindRefresh)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		reason apierror.AuthReason
	}{
		{"missing header", "", apierror.AuthMissing},
		{"basic scheme", "Basic dXNlcjpwYXNz", apierror.AuthMalformed},
		{"lowercase scheme", "bearer " + access, apierror.AuthMalformed},
		{"scheme only", "Bearer", apierror.AuthMalformed},
		{"garbage token", "Bearer abc.def", apierror.AuthMalformed},
		{"refresh as access", "Bearer " + refresh, apierror.AuthWrongType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authn.Authenticate(requestWithAuth(tc.header))
			assert.Equal(t, tc.reason, authReason(t, err))
		})
	}

	t.Run("valid access token", func(t *testing.T) {
		claims, err := authn.Authenticate(requestWithAuth("Bearer " + access))
		require.NoError(t, err)
		assert.Equal(t, testIdentity, claims.Identity())
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{Phone: "0901111111", RoleID: 3, Type: KindAccess}
	got, ok := FromContext(WithIdentity(context.Background(), claims))
	require.True(t, ok)
	assert.Same(t, claims, got)
}

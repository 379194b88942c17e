package auth

import "context"

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying claims.
func WithIdentity(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

// FromContext returns the claims attached by WithIdentity, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(*Claims)
	return claims, ok && claims != nil
}

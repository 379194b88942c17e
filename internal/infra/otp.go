package infra

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps one-time password-reset codes in Redis with a TTL.
// A code is bound to a (phone, email) pair.
type OTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPStore(rdb *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: ttl}
}

func otpKey(phone, email string) string {
	return fmt.Sprintf("otp:%s:%s", phone, strings.ToLower(email))
}

// Issue generates a fresh 6-digit code, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, phone, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKey(phone, email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Check reports whether code matches without using it up.
func (s *OTPStore) Check(ctx context.Context, phone, email, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, otpKey(phone, email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == code, nil
}

// Consume atomically removes the stored code and reports whether it matched.
// A wrong guess burns the code too.
func (s *OTPStore) Consume(ctx context.Context, phone, email, code string) (bool, error) {
	stored, err := s.rdb.GetDel(ctx, otpKey(phone, email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == code, nil
}

package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const PurposeResetPassword = "reset_password"

// MaxAttempts 次验证失败后验证码作废，需要重新申请
const MaxAttempts = 5

// Store 把一次性验证码保存在 redis 中，键为 otp_<email>_<purpose>
type Store struct {
	rdb       *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
}

func NewStore(rdb *redis.Client, ttl, opTimeout time.Duration) *Store {
	return &Store{
		rdb:       rdb,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func key(email, purpose string) string {
	return fmt.Sprintf("otp_%s_%s", email, purpose)
}

func attemptsKey(email, purpose string) string {
	return key(email, purpose) + "_attempts"
}

// Generate 生成 6 位数字验证码
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue 生成新的验证码并覆盖旧的
func (s *Store) Issue(ctx context.Context, email, purpose string) (string, error) {
	code, err := Generate()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	// 新验证码的失败次数从零开始
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(email, purpose), code, s.ttl)
		pipe.Del(ctx, attemptsKey(email, purpose))
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify 验证码不存在或已过期时返回 false。
// 每次比对失败都会计数，达到 MaxAttempts 次后验证码被删除。
func (s *Store) Verify(ctx context.Context, email, purpose, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	stored, err := s.rdb.Get(ctx, key(email, purpose)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		return true, nil
	}

	attempts, err := s.rdb.Incr(ctx, attemptsKey(email, purpose)).Result()
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := s.rdb.Expire(ctx, attemptsKey(email, purpose), s.ttl).Err(); err != nil {
			return false, err
		}
	}
	if attempts >= MaxAttempts {
		if err := s.rdb.Del(ctx, key(email, purpose), attemptsKey(email, purpose)).Err(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *Store) Delete(ctx context.Context, email, purpose string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.rdb.Del(ctx, key(email, purpose), attemptsKey(email, purpose)).Err()
}

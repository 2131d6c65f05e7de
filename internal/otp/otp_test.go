package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, ttl, time.Second), s
}

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestStore_IssueAndVerify(t *testing.T) {
	store, mr := newTestStore(t, 15*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)

	assert.True(t, mr.Exists("otp_john@x.com_reset_password"))
	assert.Equal(t, 15*time.Minute, mr.TTL("otp_john@x.com_reset_password"))

	ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Verify(ctx, "john@x.com", PurposeResetPassword, "not-it")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Verify(ctx, "jane@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "john@x.com", PurposeResetPassword))
	assert.False(t, mr.Exists("otp_john@x.com_reset_password"))

	ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LocksAfterMaxAttempts(t *testing.T) {
	store, mr := newTestStore(t, 15*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)

	for i := 0; i < MaxAttempts-1; i++ {
		ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 15*time.Minute, mr.TTL("otp_john@x.com_reset_password_attempts"))

	// 还剩一次机会时正确的验证码仍然有效
	ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Verify(ctx, "john@x.com", PurposeResetPassword, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("otp_john@x.com_reset_password"))
	assert.False(t, mr.Exists("otp_john@x.com_reset_password_attempts"))

	ok, err = store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_IssueResetsAttempts(t *testing.T) {
	store, mr := newTestStore(t, 15*time.Minute)
	ctx := context.Background()

	_, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)
	for i := 0; i < MaxAttempts-1; i++ {
		_, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, "wrong")
		require.NoError(t, err)
	}

	code, err := store.Issue(ctx, "john@x.com", PurposeResetPassword)
	require.NoError(t, err)
	assert.False(t, mr.Exists("otp_john@x.com_reset_password_attempts"))

	_, err = store.Verify(ctx, "john@x.com", PurposeResetPassword, "wrong")
	require.NoError(t, err)
	ok, err := store.Verify(ctx, "john@x.com", PurposeResetPassword, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func newTestTokens(t *testing.T, now *time.Time) *Tokens {
	t.Helper()
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	if now != nil {
		tokens.now = func() time.Time { return *now }
	}
	return tokens
}

func TestNewTokens_RejectsShortSecret(t *testing.T) {
	_, err := NewTokens("too-short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestTokens_SubjectRoundTrip(t *testing.T) {
	tokens := newTestTokens(t, nil)
	id := int64(42)

	for _, ttl := range []time.Duration{time.Second * 5, time.Minute, 24 * time.Hour} {
		token, err := tokens.Issue("john@x.com", Claims{UserID: &id, UserType: "candidate"}, ttl)
		require.NoError(t, err)

		subject, ok := tokens.Subject(token)
		require.True(t, ok)
		assert.Equal(t, "john@x.com", subject)
		assert.True(t, tokens.Validate(token))
	}
}

func TestTokens_Claims(t *testing.T) {
	tokens := newTestTokens(t, nil)
	id := int64(7)

	token, err := tokens.Issue("jane@x.com", Claims{UserID: &id, UserType: "employer"}, time.Hour)
	require.NoError(t, err)

	userType, ok := tokens.Claim(token, "userType")
	require.True(t, ok)
	assert.Equal(t, "employer", userType)

	userID, ok := tokens.Claim(token, "userId")
	require.True(t, ok)
	assert.Equal(t, float64(7), userID)

	_, ok = tokens.Claim(token, "missing")
	assert.False(t, ok)
}

func TestTokens_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	token, err := tokens.Issue("john@x.com", Claims{}, 10*time.Minute)
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	assert.True(t, tokens.Validate(token))

	now = now.Add(2 * time.Minute)
	assert.False(t, tokens.Validate(token))
	_, ok := tokens.Subject(token)
	assert.False(t, ok)
	_, ok = tokens.Claim(token, "sub")
	assert.False(t, ok)
}

func TestTokens_RejectsMalformedAndForged(t *testing.T) {
	tokens := newTestTokens(t, nil)

	other, err := NewTokens("another-secret-another-secret-another", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue("john@x.com", Claims{}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "john@x.com", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "a.b.c", forged, unsigned} {
		assert.False(t, tokens.Validate(bad), bad)
		_, ok := tokens.Subject(bad)
		assert.False(t, ok, bad)
		_, ok = tokens.Claim(bad, "sub")
		assert.False(t, ok, bad)
	}
}

func TestTokens_IssueForUser(t *testing.T) {
	tokens := newTestTokens(t, nil)

	token, err := tokens.IssueForUser(&domain.User{ID: 3, Email: "a@b.com", UserType: domain.RoleAdmin})
	require.NoError(t, err)

	claims, ok := tokens.parse(token)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", claims.Subject)
	require.NotNil(t, claims.UserID)
	assert.Equal(t, int64(3), *claims.UserID)
	assert.Equal(t, "admin", claims.UserType)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokens_IssueFromSecret(t *testing.T) {
	tokens := newTestTokens(t, nil)

	token, err := tokens.IssueFromSecret("  " + testSecret + " ")
	require.NoError(t, err)
	subject, ok := tokens.Subject(token)
	require.True(t, ok)
	assert.Equal(t, APISubject, subject)
	_, ok = tokens.Claim(token, "userId")
	assert.False(t, ok)

	_, err = tokens.IssueFromSecret("wrong")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = tokens.IssueFromSecret("   ")
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestTokens_SubSecondTTLIsValidImmediately(t *testing.T) {
	tokens := newTestTokens(t, nil)

	for i := 0; i < 200; i++ {
		token, err := tokens.Issue("john@x.com", Claims{}, 500*time.Millisecond)
		require.NoError(t, err)
		require.True(t, tokens.Validate(token), "token %d expired right after issue", i)
	}
}

func TestTokens_ExpiryRoundsUpToSecond(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 300*int(time.Millisecond), time.UTC)
	issued := now
	tokens := newTestTokens(t, &now)

	token, err := tokens.Issue("john@x.com", Claims{}, 1500*time.Millisecond)
	require.NoError(t, err)

	// now+ttl = 12:00:01.800，exp 应为 12:00:02 而不是 12:00:01
	now = issued.Add(1499 * time.Millisecond)
	assert.True(t, tokens.Validate(token))

	now = time.Date(2026, 1, 1, 12, 0, 2, 100*int(time.Millisecond), time.UTC)
	assert.False(t, tokens.Validate(token))

	assert.Equal(t, time.Date(2026, 1, 1, 13, 0, 1, 0, time.UTC), expiry(issued, time.Hour))
	whole := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, whole.Add(time.Minute), expiry(whole, time.Minute))
}

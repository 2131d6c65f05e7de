package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

// APISubject is the subject of tokens minted from the shared secret.
const APISubject = "api"

const minSecretLength = 32

var ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")

// Claims are the identity fields embedded next to the registered claims.
type Claims struct {
	UserID   *int64
	UserType string
}

type AuthClaims struct {
	UserID   *int64 `json:"userId,omitempty"`
	UserType string `json:"userType,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and checks HS256 bearer tokens. It holds no mutable state
// and is safe for concurrent use.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL 是 Issue 未显式指定有效期时使用的默认值
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

func (t *Tokens) Issue(subject string, claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = t.ttl
	}
	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now, ttl)),
		},
	})
	return token.SignedString(t.secret)
}

// IssueForUser issues a token carrying the user's email, id and role.
func (t *Tokens) IssueForUser(user *domain.User) (string, error) {
	id := user.ID
	return t.Issue(user.Email, Claims{UserID: &id, UserType: string(user.UserType)}, t.ttl)
}

// IssueFromSecret mints an identity-less token for out-of-band tooling when
// provided matches the server secret.
func (t *Tokens) IssueFromSecret(provided string) (string, error) {
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return "", domain.Invalid("Secret is required")
	}
	if subtle.ConstantTimeCompare([]byte(provided), t.secret) != 1 {
		return "", domain.Forbidden("Invalid secret. The provided secret does not match the configured JWT secret")
	}
	return t.Issue(APISubject, Claims{}, t.ttl)
}

// expiry 把 now+ttl 向上取整到秒，exp 以秒为单位，直接截断会让 token 提前失效
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if truncated := exp.Truncate(time.Second); truncated.Before(exp) {
		return truncated.Add(time.Second)
	}
	return exp
}

func (t *Tokens) parseInto(tokenString string, claims jwt.Claims) bool {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	return err == nil && token.Valid
}

func (t *Tokens) parse(tokenString string) (*AuthClaims, bool) {
	claims := &AuthClaims{}
	if !t.parseInto(tokenString, claims) {
		return nil, false
	}
	return claims, true
}

// Validate reports whether the signature verifies and the token has not
// expired. Malformed, forged and expired tokens are indistinguishable.
func (t *Tokens) Validate(tokenString string) bool {
	_, ok := t.parse(tokenString)
	return ok
}

func (t *Tokens) Subject(tokenString string) (string, bool) {
	claims, ok := t.parse(tokenString)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// Claim 返回 token 中的任意字段，数字按 JSON 解码规则为 float64
func (t *Tokens) Claim(tokenString, key string) (any, bool) {
	claims := jwt.MapClaims{}
	if !t.parseInto(tokenString, claims) {
		return nil, false
	}
	v, ok := claims[key]
	return v, ok
}

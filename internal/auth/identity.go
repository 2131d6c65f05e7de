package auth

import (
	"context"
	"net/http"
	"strings"
)

const DefaultRole = "ROLE_USER"

// Identity is what a valid bearer token says about the caller. UserID is nil
// for tokens minted from the shared secret.
type Identity struct {
	Subject  string
	UserID   *int64
	UserType string
	Role     string
}

func (id Identity) IsAdmin() bool {
	return id.Role == "ROLE_ADMIN"
}

// Owns 判断调用者是否就是该用户或管理员
func (id Identity) Owns(userID int64) bool {
	if id.IsAdmin() {
		return true
	}
	return id.UserID != nil && *id.UserID == userID
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// RoleFor maps a userType claim to a role label.
func RoleFor(userType string) string {
	if userType == "" {
		return DefaultRole
	}
	return "ROLE_" + strings.ToUpper(userType)
}

// BearerToken 从 Authorization 头中取出 token，不存在时返回空字符串
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Decode turns the request's bearer token into an Identity. It never fails:
// a missing, malformed, forged or expired token all yield ok == false.
func Decode(r *http.Request, tokens *Tokens) (Identity, bool) {
	tokenString := BearerToken(r)
	if tokenString == "" {
		return Identity{}, false
	}

	claims, ok := tokens.parse(tokenString)
	if !ok || claims.Subject == "" {
		return Identity{}, false
	}

	return Identity{
		Subject:  claims.Subject,
		UserID:   claims.UserID,
		UserType: claims.UserType,
		Role:     RoleFor(claims.UserType),
	}, true
}

var publicPrefixes = []string{
	"/api/auth/",
	"/swagger-ui",
	"/api-docs",
	"/v3/api-docs",
}

// IsPublic reports whether the decode stage is skipped for the request.
// Job reads are public; job writes are not.
func IsPublic(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if method == http.MethodGet && (path == "/api/v1/job" || strings.HasPrefix(path, "/api/v1/job/")) {
		return true
	}
	return false
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tokens := newTestTokens(t, nil)
	id := int64(9)
	valid, err := tokens.Issue("emp@x.com", Claims{UserID: &id, UserType: "employer"}, time.Hour)
	require.NoError(t, err)
	apiToken, err := tokens.IssueFromSecret(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		ok     bool
		role   string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "valid token", header: "Bearer " + valid, ok: true, role: "ROLE_EMPLOYER"},
		{name: "lowercase scheme", header: "bearer " + valid, ok: true, role: "ROLE_EMPLOYER"},
		{name: "api token", header: "Bearer " + apiToken, ok: true, role: DefaultRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			identity, ok := Decode(r, tokens)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, identity.Role)
		})
	}
}

func TestIdentity_Owns(t *testing.T) {
	id := int64(5)
	candidate := Identity{UserID: &id, Role: RoleFor("candidate")}
	admin := Identity{Role: RoleFor("admin")}
	api := Identity{Subject: APISubject, Role: DefaultRole}

	assert.True(t, candidate.Owns(5))
	assert.False(t, candidate.Owns(6))
	assert.True(t, admin.Owns(6))
	assert.False(t, api.Owns(5))
}

func TestIdentityContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFrom(r.Context())
	assert.False(t, ok)

	ctx := WithIdentity(r.Context(), Identity{Subject: "a@b.com", Role: DefaultRole})
	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", got.Subject)
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		method string
		path   string
		public bool
	}{
		{http.MethodPost, "/api/auth/login", true},
		{http.MethodPost, "/api/auth/register", true},
		{http.MethodGet, "/swagger-ui/index.html", true},
		{http.MethodGet, "/v3/api-docs", true},
		{http.MethodGet, "/api/v1/job", true},
		{http.MethodGet, "/api/v1/job/12/detail", true},
		{http.MethodPost, "/api/v1/job", false},
		{http.MethodDelete, "/api/v1/job/12", false},
		{http.MethodGet, "/api/v1/jobs", false},
		{http.MethodGet, "/api/v1/users", false},
		{http.MethodGet, "/api/v1/matches/jobs/1", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.public, IsPublic(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

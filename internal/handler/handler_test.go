package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/config"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/otp"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service/servicetest"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

type testServer struct {
	handler *Handler
	svc     *service.Service
	tokens  *auth.Tokens
	store   *servicetest.Store
	mail    *servicetest.Mail
}

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := auth.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Resume.MaxFileSize = 1024

	store := servicetest.NewStore()
	mail := &servicetest.Mail{}
	svc := service.New(service.Deps{
		Store:  store,
		Hasher: auth.NewBcryptHasher(4),
		Tokens: tokens,
		Files:  files,
		OTP:    otp.NewStore(rdb, 15*time.Minute, time.Second),
		Mail:   mail,
	}, service.Options{
		AllowedExtensions: []string{"pdf", "doc", "docx"},
		MaxFileSize:       cfg.Resume.MaxFileSize,
	})

	h, err := NewHandler(cfg, svc, tokens, metrics.New(), nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return &testServer{handler: h, svc: svc, tokens: tokens, store: store, mail: mail}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.Mux.ServeHTTP(w, req)
	return w
}

// user 创建用户并返回它的 token
func (s *testServer) user(t *testing.T, email string, role domain.Role) (*domain.User, string) {
	t.Helper()
	u, err := s.svc.CreateUser(context.Background(), service.CreateUserInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		UserType:  role,
	})
	require.NoError(t, err)

	token, err := s.tokens.IssueForUser(u)
	require.NoError(t, err)
	return u, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `job_portal_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestNotFoundUsesEnvelope(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "/api/v1/nothing-here", resp.Path)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "dev@x.com", domain.RoleCandidate)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"valid token", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/me", tt.token, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/me", "", nil)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "/api/v1/me", resp.Path)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestPublicJobReadsIgnoreBadToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/job", "not-a-jwt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestMe_APITokenHasNoUser(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.IssueFromSecret(testSecret)
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPathIDTypeMismatch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/job/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "Invalid value 'abc' for parameter 'id'. Expected type: integer", resp.Message)
}


func (s *testServer) upload(t *testing.T, userID int64, token, fileName, content, description string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if description != "" {
		require.NoError(t, mw.WriteField("description", description))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/upload/"+strconv.FormatInt(userID, 10), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.Mux.ServeHTTP(w, req)
	return w
}

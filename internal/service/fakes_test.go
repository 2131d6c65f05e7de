package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/otp"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service/servicetest"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

type testEnv struct {
	svc    *Service
	store  *servicetest.Store
	mail   *servicetest.Mail
	tokens *auth.Tokens
	files  *storage.FileStore
	redis  *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
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

	store := servicetest.NewStore()
	mail := &servicetest.Mail{}

	svc := New(Deps{
		Store:  store,
		Hasher: auth.NewBcryptHasher(4),
		Tokens: tokens,
		Files:  files,
		OTP:    otp.NewStore(rdb, 15*time.Minute, time.Second),
		Mail:   mail,
	}, Options{
		AllowedExtensions: []string{"pdf", "doc", "docx"},
		MaxFileSize:       1024,
		VerifyPDF:         false,
	})
	svc.now = func() time.Time { return store.Now }

	return &testEnv{svc: svc, store: store, mail: mail, tokens: tokens, files: files, redis: mr}
}

func (e *testEnv) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := e.svc.CreateUser(context.Background(), CreateUserInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		UserType:  role,
	})
	require.NoError(t, err)
	return u
}

func identityOf(u *domain.User) auth.Identity {
	id := u.ID
	return auth.Identity{
		Subject:  u.Email,
		UserID:   &id,
		UserType: string(u.UserType),
		Role:     auth.RoleFor(string(u.UserType)),
	}
}

func ptr[T any](v T) *T {
	return &v
}

package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service/servicetest"
)

func upload(t *testing.T, env *testEnv, userID int64, name, content string) *domain.Resume {
	t.Helper()
	r, err := env.svc.UploadResume(context.Background(), userID, UploadInput{
		FileName: name,
		Content:  strings.NewReader(content),
	})
	require.NoError(t, err)
	return r
}

func TestUploadResume(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dev@x.com", domain.RoleCandidate)

	desc := "backend"
	r, err := env.svc.UploadResume(context.Background(), u.ID, UploadInput{
		FileName:    "My CV.DOCX",
		Content:     strings.NewReader("resume body"),
		Description: &desc,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MimeDOCX, r.FileType)
	assert.Equal(t, int64(len("resume body")), r.FileSize)
	assert.Equal(t, "My CV.DOCX", r.OriginalFileName)
	assert.True(t, strings.HasSuffix(r.FileName, ".docx"))
	assert.NotEqual(t, r.OriginalFileName, r.FileName)
	assert.False(t, r.IsPrimary)
	assert.Equal(t, &desc, r.Description)

	data, err := os.ReadFile(r.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "resume body", string(data))
}

func TestUploadResume_Rejections(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	ctx := context.Background()

	tests := []struct {
		name    string
		file    string
		content string
		userID  int64
		kind    error
		msg     string
	}{
		{"empty file", "cv.pdf", "", u.ID, domain.ErrInvalid, "File is empty"},
		{"too large", "cv.pdf", strings.Repeat("a", 1025), u.ID, domain.ErrInvalid, "File size exceeds maximum allowed size"},
		{"bad extension", "cv.exe", "x", u.ID, domain.ErrInvalid, "File type not allowed. Allowed types: pdf, doc, docx"},
		{"no extension", "resume", "x", u.ID, domain.ErrInvalid, "File type not allowed. Allowed types: pdf, doc, docx"},
		{"no filename", "  ", "x", u.ID, domain.ErrInvalid, "Invalid filename"},
		{"unknown user", "cv.pdf", "x", 999, domain.ErrNotFound, "User not found with id: 999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.UploadResume(ctx, tt.userID, UploadInput{FileName: tt.file, Content: strings.NewReader(tt.content)})
			assert.ErrorIs(t, err, tt.kind)
			assert.EqualError(t, err, tt.msg)
		})
	}

	resumes, err := env.svc.ListResumes(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, resumes)
}

func TestUploadResume_ExactMaxSize(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dev@x.com", domain.RoleCandidate)

	r := upload(t, env, u.ID, "cv.doc", strings.Repeat("a", 1024))
	assert.Equal(t, int64(1024), r.FileSize)
	assert.Equal(t, domain.MimeDOC, r.FileType)
}

func TestUploadResume_VerifyPDF(t *testing.T) {
	env := newTestEnv(t)
	env.svc.opts.VerifyPDF = true
	u := env.user(t, "dev@x.com", domain.RoleCandidate)

	_, err := env.svc.UploadResume(context.Background(), u.ID, UploadInput{
		FileName: "cv.pdf",
		Content:  strings.NewReader("definitely not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestSetPrimaryResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	other := env.user(t, "other@x.com", domain.RoleCandidate)

	_, err := env.svc.PrimaryResume(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	a := upload(t, env, u.ID, "a.pdf", "a")
	b := upload(t, env, u.ID, "b.pdf", "b")
	foreign := upload(t, env, other.ID, "c.pdf", "c")

	primary, err := env.svc.SetPrimaryResume(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, primary.IsPrimary)

	_, err = env.svc.SetPrimaryResume(ctx, u.ID, b.ID)
	require.NoError(t, err)

	got, err := env.svc.PrimaryResume(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = env.svc.SetPrimaryResume(ctx, u.ID, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetPrimaryResume_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "dev@x.com", domain.RoleCandidate)

	ids := make([]int64, 0)
	for i := 0; i < 5; i++ {
		ids = append(ids, upload(t, env, u.ID, "cv.pdf", "x").ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = env.svc.SetPrimaryResume(ctx, u.ID, id)
		}(id)
	}
	wg.Wait()

	resumes, err := env.svc.ListResumes(ctx, u.ID)
	require.NoError(t, err)
	primaries := 0
	for _, r := range resumes {
		if r.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestDownloadAndDeleteResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	other := env.user(t, "other@x.com", domain.RoleCandidate)

	r := upload(t, env, u.ID, "cv.pdf", "content")

	got, data, err := env.svc.DownloadResume(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.Equal(t, "cv.pdf", got.OriginalFileName)

	_, _, err = env.svc.DownloadResume(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = env.svc.DeleteResume(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, env.svc.DeleteResume(ctx, u.ID, r.ID))
	_, err = os.Stat(r.FilePath)
	assert.True(t, os.IsNotExist(err))

	_, _, err = env.svc.DownloadResume(ctx, u.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// brokenDeleteStore 在删除简历记录时总是失败
type brokenDeleteStore struct {
	*servicetest.Store
}

func (brokenDeleteStore) DeleteResume(context.Context, int64) error {
	return errors.New("db down")
}

func TestDeleteResume_StoreFailureKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	r := upload(t, env, u.ID, "cv.pdf", "content")

	env.svc.store = brokenDeleteStore{env.store}

	err := env.svc.DeleteResume(ctx, u.ID, r.ID)
	assert.EqualError(t, err, "db down")

	resumes, err := env.svc.ListResumes(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, resumes, 1)

	_, data, err := env.svc.DownloadResume(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestDeleteResume_MissingFileStillDeletesRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	r := upload(t, env, u.ID, "cv.pdf", "content")

	require.NoError(t, os.Remove(r.FilePath))

	require.NoError(t, env.svc.DeleteResume(ctx, u.ID, r.ID))
	resumes, err := env.svc.ListResumes(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, resumes)
}

func TestDownloadResume_FileMissing(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dev@x.com", domain.RoleCandidate)
	r := upload(t, env, u.ID, "cv.pdf", "content")

	require.NoError(t, os.Remove(r.FilePath))

	_, _, err := env.svc.DownloadResume(context.Background(), u.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Resume file not found")
}

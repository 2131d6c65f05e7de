package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

func TestResumeEndpoints(t *testing.T) {
	s := newTestServer(t)
	me, myToken := s.user(t, "dev@x.com", domain.RoleCandidate)
	_, otherToken := s.user(t, "other@x.com", domain.RoleCandidate)

	w := s.upload(t, me.ID, myToken, "My CV.pdf", "pdf bytes", "main resume")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[domain.Resume](t, w)
	assert.Equal(t, domain.MimePDF, first.FileType)
	assert.Equal(t, "main resume", *first.Description)
	assert.NotContains(t, w.Body.String(), "filePath")

	w = s.upload(t, me.ID, myToken, "cv.docx", "docx bytes", "")
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[domain.Resume](t, w)

	base := fmt.Sprintf("/api/v1/resumes/user/%d", me.ID)

	w = s.do(t, http.MethodGet, base, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.upload(t, me.ID, otherToken, "cv.pdf", "x", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, base, myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Resume](t, w), 2)

	w = s.do(t, http.MethodGet, base+"/primary", myToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, fmt.Sprintf("%s/primary/%d", base, first.ID), myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, fmt.Sprintf("%s/primary/%d", base, second.ID), myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, base+"/primary", myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, second.ID, decode[domain.Resume](t, w).ID)

	w = s.do(t, http.MethodGet, fmt.Sprintf("%s/download/%d", base, first.ID), myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf bytes", w.Body.String())
	assert.Equal(t, domain.MimePDF, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "My CV.pdf")

	w = s.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, first.ID), myToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, fmt.Sprintf("%s/download/%d", base, first.ID), myToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadResumeEndpoint_Rejections(t *testing.T) {
	s := newTestServer(t)
	me, token := s.user(t, "dev@x.com", domain.RoleCandidate)

	w := s.upload(t, me.ID, token, "", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File is required", decode[ErrorResponse](t, w).Message)

	w = s.upload(t, me.ID, token, "virus.exe", "x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File type not allowed. Allowed types: pdf, doc, docx", decode[ErrorResponse](t, w).Message)

	w = s.upload(t, me.ID, token, "big.pdf", strings.Repeat("a", 2048), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File size exceeds maximum allowed size", decode[ErrorResponse](t, w).Message)

	w = s.upload(t, me.ID, token, "empty.pdf", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File is empty", decode[ErrorResponse](t, w).Message)
}

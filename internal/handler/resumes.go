package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service"
)

// multipart 表单中除文件外的字段和边界所占的额外空间
const multipartOverhead = 1 << 20

func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Resume.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorResponse(w, r, http.StatusBadRequest, "File size exceeds maximum allowed size")
			return
		}
		h.errorResponse(w, r, http.StatusBadRequest, "Request must be multipart/form-data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	var description *string
	if d := r.FormValue("description"); d != "" {
		if len(d) > 500 {
			h.errorResponse(w, r, http.StatusBadRequest, "Description must not exceed 500 characters")
			return
		}
		description = &d
	}

	resume, err := h.service.UploadResume(r.Context(), userID, service.UploadInput{
		FileName:    header.Filename,
		Content:     file,
		Description: description,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, resume)
}

func (h *Handler) GetUserResumes(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)

	resumes, err := h.service.ListResumes(r.Context(), userID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resumes)
}

func (h *Handler) GetPrimaryResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)

	resume, err := h.service.PrimaryResume(r.Context(), userID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resume)
}

func (h *Handler) SetPrimaryResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	resumeID, ok := h.pathID(w, r, "resumeId")
	if !ok {
		return
	}

	resume, err := h.service.SetPrimaryResume(r.Context(), userID, resumeID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resume)
}

func (h *Handler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	resumeID, ok := h.pathID(w, r, "resumeId")
	if !ok {
		return
	}

	resume, data, err := h.service.DownloadResume(r.Context(), userID, resumeID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", resume.FileType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resume.OriginalFileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logInternalServerError(r, fmt.Errorf("write resume %d: %w", resume.ID, err))
	}
}

func (h *Handler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	resumeID, ok := h.pathID(w, r, "resumeId")
	if !ok {
		return
	}

	if err := h.service.DeleteResume(r.Context(), userID, resumeID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

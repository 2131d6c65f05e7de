package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/storage"
)

var resumeMimeTypes = map[string]string{
	"pdf":  domain.MimePDF,
	"doc":  domain.MimeDOC,
	"docx": domain.MimeDOCX,
}

type UploadInput struct {
	FileName    string
	Content     io.Reader
	Description *string
}

// resumeExtension 返回小写、不带点的扩展名，不在白名单中时返回错误
func (s *Service) resumeExtension(fileName string) (string, string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	mime, known := resumeMimeTypes[ext]
	if ext == "" || !known || !slices.Contains(s.opts.AllowedExtensions, ext) {
		return "", "", domain.Invalid(fmt.Sprintf("File type not allowed. Allowed types: %s", strings.Join(s.opts.AllowedExtensions, ", ")))
	}
	return ext, mime, nil
}

func (s *Service) UploadResume(ctx context.Context, userID int64, in UploadInput) (*domain.Resume, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, domain.Invalid("Invalid filename")
	}

	ext, mime, err := s.resumeExtension(name)
	if err != nil {
		return nil, err
	}

	// 多读一个字节用来判断是否超过大小限制
	data, err := io.ReadAll(io.LimitReader(in.Content, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	if len(data) == 0 {
		return nil, domain.Invalid("File is empty")
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		return nil, domain.Invalid("File size exceeds maximum allowed size")
	}

	if ext == "pdf" && s.opts.VerifyPDF {
		if err := storage.CheckPDF(data); err != nil {
			return nil, domain.Invalid("File is not a valid PDF document")
		}
	}

	stored, err := s.files.Save(ext, bytes.NewReader(data))
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	resume := &domain.Resume{
		FileName:         stored.Name,
		FileType:         mime,
		FileSize:         stored.Size,
		FilePath:         stored.Path,
		OriginalFileName: name,
		Description:      in.Description,
		UserID:           userID,
	}
	if err := s.store.CreateResume(ctx, resume); err != nil {
		if rmErr := s.files.Remove(stored.Path); rmErr != nil {
			slog.Warn("无法清理简历文件", "path", stored.Path, "error", rmErr)
		}
		return nil, err
	}
	return resume, nil
}

func (s *Service) ListResumes(ctx context.Context, userID int64) ([]*domain.Resume, error) {
	return s.store.GetResumesByUserID(ctx, userID)
}

func (s *Service) PrimaryResume(ctx context.Context, userID int64) (*domain.Resume, error) {
	resume, err := s.store.GetPrimaryResume(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("No primary resume found for user: %d", userID)
		}
		return nil, err
	}
	return resume, nil
}

// SetPrimaryResume 把指定简历设为主简历，同一用户的其他简历会被取消
func (s *Service) SetPrimaryResume(ctx context.Context, userID, resumeID int64) (*domain.Resume, error) {
	resume, err := s.store.SetPrimaryResume(ctx, userID, resumeID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("Resume not found")
		}
		return nil, err
	}
	return resume, nil
}

// ownedResume 查找属于 userID 的简历，不属于该用户时同样视为不存在
func (s *Service) ownedResume(ctx context.Context, userID, resumeID int64) (*domain.Resume, error) {
	resume, err := s.store.GetResumeByID(ctx, resumeID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("Resume not found")
		}
		return nil, err
	}
	if resume.UserID != userID {
		return nil, domain.NotFound("Resume not found")
	}
	return resume, nil
}

func (s *Service) DownloadResume(ctx context.Context, userID, resumeID int64) (*domain.Resume, []byte, error) {
	resume, err := s.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.files.Read(resume.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileMissing) {
			return nil, nil, domain.NotFound("Resume file not found")
		}
		return nil, nil, domain.StorageFailure(err)
	}
	return resume, data, nil
}

func (s *Service) DeleteResume(ctx context.Context, userID, resumeID int64) error {
	resume, err := s.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return err
	}

	// 先删记录再删文件，记录删除失败时文件仍然可以下载
	if err := s.store.DeleteResume(ctx, resumeID); err != nil {
		if isNoRows(err) {
			return domain.NotFound("Resume not found")
		}
		return err
	}

	if err := s.files.Remove(resume.FilePath); err != nil {
		slog.Warn("无法删除简历文件", "resume_id", resumeID, "path", resume.FilePath, "error", err)
	}
	return nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

type CreateUserInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	PhoneNumber      *string
	PhoneCountryCode *string
	UserType         domain.Role
}

// UpdateUserInput 覆盖用户资料，UserType 为 nil 时保持不变。
// 邮箱是 token 的 subject，创建后不可修改。
type UpdateUserInput struct {
	FirstName        string
	LastName         string
	PhoneNumber      *string
	PhoneCountryCode *string
	UserType         *domain.Role
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	userType := in.UserType
	if userType == "" {
		userType = domain.RoleCandidate
	}

	user := &domain.User{
		Email:            NormalizeEmail(in.Email),
		PasswordHash:     hash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		PhoneNumber:      in.PhoneNumber,
		PhoneCountryCode: in.PhoneCountryCode,
		UserType:         userType,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("User not found with id: %d", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("User not found with email: %s", email)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.PhoneNumber = in.PhoneNumber
	user.PhoneCountryCode = in.PhoneCountryCode
	if in.UserType != nil {
		user.UserType = *in.UserType
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if isNoRows(err) {
			return nil, domain.Conflict("User was modified concurrently, please retry")
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser 删除用户，简历记录由数据库级联删除，磁盘上的文件在这里清理
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	resumes, err := s.store.GetResumesByUserID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	for _, r := range resumes {
		if err := s.files.Remove(r.FilePath); err != nil {
			slog.Warn("无法删除简历文件", "user_id", id, "path", r.FilePath, "error", err)
		}
	}
	return nil
}

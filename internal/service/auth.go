package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/otp"
)

const msgInvalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitName 按第一段空白把全名拆成名和姓，只有一个词时姓为空字符串
func SplitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}

	first := fields[0]
	rest := strings.TrimSpace(strings.TrimSpace(name)[len(first):])
	return first, rest
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Conflict(domain.MsgEmailRegistered)
	} else if !isNoRows(err) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	firstName, lastName := SplitName(in.Name)
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		UserType:     domain.RoleCandidate,
	}

	// 并发注册同一邮箱时由唯一约束兜底，repository 会返回 Conflict
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueForUser(user)
	if err != nil {
		return nil, err
	}

	// 欢迎邮件发送失败不影响注册
	if err := s.mail.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeWelcome,
		To:   user.Email,
		Data: domain.WelcomeMailData{FirstName: user.FirstName, Email: user.Email},
	}); err != nil {
		slog.Warn("无法投递欢迎邮件", "email", user.Email, "error", err)
	}

	return &AuthResult{Token: token, User: user, Message: "User registered successfully"}, nil
}

// Login 邮箱不存在和密码错误返回同样的错误，且两条路径都会做一次 bcrypt 比较
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			s.hasher.VerifyDummy(in.Password)
			return nil, domain.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.IssueForUser(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Message: "Login successful"}, nil
}

func (s *Service) IssueAPIToken(ctx context.Context, secret string) (*AuthResult, error) {
	token, err := s.tokens.IssueFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Message: "Token generated successfully"}, nil
}

// RequireResetPassword 生成验证码并通过邮件发送。邮箱不存在时同样返回成功，防止接口被用来探测邮箱
func (s *Service) RequireResetPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return err
	}

	code, err := s.otp.Issue(ctx, user.Email, otp.PurposeResetPassword)
	if err != nil {
		return err
	}

	return s.mail.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   user.Email,
		Data: domain.ResetPasswordMailData{
			FirstName:  user.FirstName,
			OTP:        code,
			Expiration: int(s.otp.TTL().Minutes()),
		},
	})
}

func (s *Service) ConfirmResetPassword(ctx context.Context, email, code, password string) error {
	email = NormalizeEmail(email)

	ok, err := s.otp.Verify(ctx, email, otp.PurposeResetPassword, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Invalid("Invalid or expired verification code")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return domain.Invalid("Invalid or expired verification code")
		}
		return err
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return err
	}

	if err := s.otp.Delete(ctx, email, otp.PurposeResetPassword); err != nil {
		slog.Warn("无法删除验证码", "email", email, "error", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.Invalid("Old password is incorrect")
	}

	return s.setPassword(ctx, user, newPassword)
}

func (s *Service) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if isNoRows(err) {
			return domain.Conflict("User was modified concurrently, please retry")
		}
		return err
	}
	return nil
}

// EnsureInitialAdmin 创建初始管理员，已存在时什么也不做
func (s *Service) EnsureInitialAdmin(ctx context.Context, email, password, firstName string) error {
	if _, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email)); err == nil {
		return nil
	} else if !isNoRows(err) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		FirstName:    firstName,
		UserType:     domain.RoleAdmin,
	}
	if err := s.store.CreateUser(ctx, admin); err != nil && !errors.Is(err, domain.ErrConflict) {
		return err
	}
	return nil
}

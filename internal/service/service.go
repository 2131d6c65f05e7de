package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/matching"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/storage"
)

// Store 是 service 依赖的持久化接口，由 repository.Repository 实现。
// 记录不存在时返回 sql.ErrNoRows。
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobByID(ctx context.Context, id int64) (*domain.Job, error)
	GetJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error)
	FindSimilarJobs(ctx context.Context, anchor *domain.Job, limit int) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id int64) error

	CreateResume(ctx context.Context, resume *domain.Resume) error
	GetResumeByID(ctx context.Context, id int64) (*domain.Resume, error)
	GetResumesByUserID(ctx context.Context, userID int64) ([]*domain.Resume, error)
	GetPrimaryResume(ctx context.Context, userID int64) (*domain.Resume, error)
	SetPrimaryResume(ctx context.Context, userID, resumeID int64) (*domain.Resume, error)
	DeleteResume(ctx context.Context, id int64) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	VerifyDummy(password string)
}

type TokenIssuer interface {
	IssueForUser(user *domain.User) (string, error)
	IssueFromSecret(provided string) (string, error)
}

type FileStore interface {
	Save(ext string, r io.Reader) (*storage.StoredFile, error)
	Read(path string) ([]byte, error)
	Remove(path string) error
}

type OTPStore interface {
	Issue(ctx context.Context, email, purpose string) (string, error)
	Verify(ctx context.Context, email, purpose, code string) (bool, error)
	Delete(ctx context.Context, email, purpose string) error
	TTL() time.Duration
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Deps struct {
	Store   Store
	Hasher  PasswordHasher
	Tokens  TokenIssuer
	Files   FileStore
	OTP     OTPStore
	Mail    MailPublisher
	Matcher matching.Strategy
}

type Options struct {
	AllowedExtensions []string
	MaxFileSize       int64
	VerifyPDF         bool
}

type Service struct {
	store   Store
	hasher  PasswordHasher
	tokens  TokenIssuer
	files   FileStore
	otp     OTPStore
	mail    MailPublisher
	matcher matching.Strategy
	opts    Options

	now func() time.Time
}

func New(deps Deps, opts Options) *Service {
	matcher := deps.Matcher
	if matcher == nil {
		matcher = matching.Placeholder{}
	}

	return &Service{
		store:   deps.Store,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		files:   deps.Files,
		otp:     deps.OTP,
		mail:    deps.Mail,
		matcher: matcher,
		opts:    opts,
		now:     time.Now,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

package servicetest

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/matching"
)

// Store 是 service.Store 的内存实现，语义与 repository 保持一致：
// 记录不存在时返回 sql.ErrNoRows，版本号不一致时同样返回 sql.ErrNoRows。
type Store struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*domain.User
	jobs    map[int64]*domain.Job
	resumes map[int64]*domain.Resume
	Now     time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]*domain.User),
		jobs:    make(map[int64]*domain.Job),
		resumes: make(map[int64]*domain.Resume),
		Now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *Store) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Store) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.Conflict(domain.MsgEmailRegistered)
		}
	}
	user.ID = m.id()
	user.CreatedAt, user.UpdatedAt = m.Now, m.Now
	user.Version = 1
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *u
	return &c, nil
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *Store) GetAllUsers(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*domain.User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			c := *u
			users = append(users, &c)
		}
	}
	return users, nil
}

func (m *Store) UpdateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.ID]
	if !ok || stored.Version != user.Version {
		return sql.ErrNoRows
	}
	// 与数据库一致，邮箱不会被更新
	user.Email = stored.Email
	user.Version++
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *Store) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	for rid, r := range m.resumes {
		if r.UserID == id {
			delete(m.resumes, rid)
		}
	}
	return nil
}

func (m *Store) CreateJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = m.id()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = m.Now
	}
	job.UpdatedAt = job.CreatedAt
	job.Version = 1
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *Store) GetJobByID(_ context.Context, id int64) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *j
	return &c, nil
}

func (m *Store) GetJobs(_ context.Context, f domain.JobFilter) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]*domain.Job, 0)
	for id := m.nextID; id >= 1; id-- {
		j, ok := m.jobs[id]
		if !ok {
			continue
		}
		if f.Company != "" && !strings.EqualFold(j.Company, f.Company) {
			continue
		}
		if f.Location != "" && !strings.EqualFold(j.Location, f.Location) {
			continue
		}
		if f.JobType != "" && j.JobType != f.JobType {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.PostedBy != nil && j.PostedBy != *f.PostedBy {
			continue
		}
		c := *j
		jobs = append(jobs, &c)
	}
	return jobs, nil
}

func (m *Store) FindSimilarJobs(ctx context.Context, anchor *domain.Job, limit int) ([]*domain.Job, error) {
	all, err := m.GetJobs(ctx, domain.JobFilter{})
	if err != nil {
		return nil, err
	}
	return matching.Rank(anchor, all, limit), nil
}

func (m *Store) UpdateJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Version != job.Version {
		return sql.ErrNoRows
	}
	job.Version++
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *Store) DeleteJob(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.jobs, id)
	return nil
}

func (m *Store) CreateResume(_ context.Context, resume *domain.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[resume.UserID]; !ok {
		return domain.NotFound("User not found with id: %d", resume.UserID)
	}
	resume.ID = m.id()
	resume.CreatedAt, resume.UpdatedAt = m.Now, m.Now
	c := *resume
	m.resumes[resume.ID] = &c
	return nil
}

func (m *Store) GetResumeByID(_ context.Context, id int64) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *r
	return &c, nil
}

func (m *Store) GetResumesByUserID(_ context.Context, userID int64) ([]*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resumes := make([]*domain.Resume, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if r, ok := m.resumes[id]; ok && r.UserID == userID {
			c := *r
			resumes = append(resumes, &c)
		}
	}
	return resumes, nil
}

func (m *Store) GetPrimaryResume(_ context.Context, userID int64) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resumes {
		if r.UserID == userID && r.IsPrimary {
			c := *r
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *Store) SetPrimaryResume(_ context.Context, userID, resumeID int64) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.resumes[resumeID]
	if !ok || target.UserID != userID {
		return nil, sql.ErrNoRows
	}
	for _, r := range m.resumes {
		if r.UserID == userID {
			r.IsPrimary = r.ID == resumeID
		}
	}
	c := *target
	return &c, nil
}

func (m *Store) DeleteResume(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.resumes, id)
	return nil
}

// Mail 记录所有投递的邮件，FailErr 不为空时投递失败
type Mail struct {
	mu      sync.Mutex
	Sent    []domain.MailMessage
	FailErr error
}

func (m *Mail) Publish(_ context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailErr != nil {
		return m.FailErr
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last 返回最后一封邮件
func (m *Mail) Last() domain.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sent[len(m.Sent)-1]
}

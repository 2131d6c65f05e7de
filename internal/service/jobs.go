package service

import (
	"context"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const (
	msgSalaryOrder    = "Minimum salary must be less than maximum salary"
	msgSalaryCurrency = "Currency must be specified when salary range is provided"
)

// ValidateSalary 检查薪资区间和币种
func ValidateSalary(job *domain.Job) error {
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin >= *job.SalaryMax {
		return domain.Invalid(msgSalaryOrder)
	}
	if (job.SalaryMin != nil || job.SalaryMax != nil) && (job.SalaryCurrency == nil || *job.SalaryCurrency == "") {
		return domain.Invalid(msgSalaryCurrency)
	}
	return nil
}

// canPostJobs: 管理员、雇主和 API token 可以发布职位
func canPostJobs(id auth.Identity) bool {
	return id.IsAdmin() || id.Subject == auth.APISubject || id.Role == auth.RoleFor(string(domain.RoleEmployer))
}

func canManageJob(id auth.Identity, job *domain.Job) bool {
	if id.IsAdmin() || id.Subject == auth.APISubject {
		return true
	}
	return id.Role == auth.RoleFor(string(domain.RoleEmployer)) && id.Owns(job.PostedBy)
}

func (s *Service) CreateJob(ctx context.Context, actor auth.Identity, job *domain.Job) (*domain.Job, error) {
	if !canPostJobs(actor) {
		return nil, domain.Forbidden("Only employers can post jobs")
	}
	if err := ValidateSalary(job); err != nil {
		return nil, err
	}

	// 雇主只能以自己的名义发布
	if !actor.IsAdmin() && actor.UserID != nil {
		job.PostedBy = *actor.UserID
	}
	if job.Status == "" {
		job.Status = domain.JobStatusActive
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("Job not found with id: %d", id)
		}
		return nil, err
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	return s.store.GetJobs(ctx, filter)
}

// UpdateJob 用 changes 覆盖职位的所有可编辑字段，Status 为空时保持原状态
func (s *Service) UpdateJob(ctx context.Context, actor auth.Identity, id int64, changes *domain.Job) (*domain.Job, error) {
	if err := ValidateSalary(changes); err != nil {
		return nil, err
	}

	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageJob(actor, job) {
		return nil, domain.Forbidden("You can only modify jobs you posted")
	}

	updated := *changes
	updated.ID = job.ID
	updated.CreatedAt = job.CreatedAt
	updated.Version = job.Version
	if updated.Status == "" {
		updated.Status = job.Status
	}
	if !actor.IsAdmin() && actor.UserID != nil {
		updated.PostedBy = job.PostedBy
	}

	if err := s.store.UpdateJob(ctx, &updated); err != nil {
		if isNoRows(err) {
			return nil, domain.Conflict("Job was modified concurrently, please retry")
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteJob(ctx context.Context, actor auth.Identity, id int64) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if !canManageJob(actor, job) {
		return domain.Forbidden("You can only delete jobs you posted")
	}

	if err := s.store.DeleteJob(ctx, id); err != nil {
		if isNoRows(err) {
			return domain.NotFound("Job not found with id: %d", id)
		}
		return err
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const jobColumns = `
	id, title, company, location, job_type, status, experience_level, department, category,
	description, requirements, responsibilities, benefits, salary_min, salary_max, salary_currency,
	work_mode, education_level, skills, company_info, company_logo_url, posted_by,
	application_deadline, start_date, created_at, updated_at, version
`

func scanJob(row rowScanner) (*domain.Job, error) {
	job := &domain.Job{}
	dst := []any{
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.JobType,
		&job.Status,
		&job.ExperienceLevel,
		&job.Department,
		&job.Category,
		&job.Description,
		&job.Requirements,
		&job.Responsibilities,
		&job.Benefits,
		&job.SalaryMin,
		&job.SalaryMax,
		&job.SalaryCurrency,
		&job.WorkMode,
		&job.EducationLevel,
		&job.Skills,
		&job.CompanyInfo,
		&job.CompanyLogoURL,
		&job.PostedBy,
		&job.ApplicationDeadline,
		&job.StartDate,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return job, nil
}

func jobArgs(job *domain.Job) []any {
	return []any{
		job.Title,
		job.Company,
		job.Location,
		job.JobType,
		job.Status,
		job.ExperienceLevel,
		job.Department,
		job.Category,
		job.Description,
		job.Requirements,
		job.Responsibilities,
		job.Benefits,
		job.SalaryMin,
		job.SalaryMax,
		job.SalaryCurrency,
		job.WorkMode,
		job.EducationLevel,
		job.Skills,
		job.CompanyInfo,
		job.CompanyLogoURL,
		job.PostedBy,
		job.ApplicationDeadline,
		job.StartDate,
	}
}

func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (
			title, company, location, job_type, status, experience_level, department, category,
			description, requirements, responsibilities, benefits, salary_min, salary_max, salary_currency,
			work_mode, education_level, skills, company_info, company_logo_url, posted_by,
			application_deadline, start_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	dst := []any{&job.ID, &job.CreatedAt, &job.UpdatedAt, &job.Version}
	return r.dbpool.QueryRowContext(ctx, query, jobArgs(job)...).Scan(dst...)
}

func (r *Repository) GetJobByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanJob(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetJobs 按过滤条件查询职位，公司和地点不区分大小写
func (r *Repository) GetJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	conditions := make([]string, 0)
	args := make([]any, 0)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Company != "" {
		add("lower(company) = lower($%d)", filter.Company)
	}
	if filter.Location != "" {
		add("lower(location) = lower($%d)", filter.Location)
	}
	if filter.JobType != "" {
		add("job_type = $%d", filter.JobType)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.PostedBy != nil {
		add("posted_by = $%d", *filter.PostedBy)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.queryJobs(ctx, query, args...)
}

// FindSimilarJobs 返回除 anchor 以外的在招职位，同类别的排在前面，其次是同类型的
func (r *Repository) FindSimilarJobs(ctx context.Context, anchor *domain.Job, limit int) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'ACTIVE' AND id <> $1
		ORDER BY
			CASE WHEN $2 <> '' AND lower(category) = lower($2) THEN 0 ELSE 1 END,
			CASE WHEN $3 <> '' AND job_type = $3 THEN 0 ELSE 1 END,
			created_at DESC,
			id DESC
		LIMIT $4
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.queryJobs(ctx, query, anchor.ID, anchor.Category, string(anchor.JobType), limit)
}

func (r *Repository) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// UpdateJob 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			title = $1,
			company = $2,
			location = $3,
			job_type = $4,
			status = $5,
			experience_level = $6,
			department = $7,
			category = $8,
			description = $9,
			requirements = $10,
			responsibilities = $11,
			benefits = $12,
			salary_min = $13,
			salary_max = $14,
			salary_currency = $15,
			work_mode = $16,
			education_level = $17,
			skills = $18,
			company_info = $19,
			company_logo_url = $20,
			posted_by = $21,
			application_deadline = $22,
			start_date = $23,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $24 AND version = $25
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := append(jobArgs(job), job.ID, job.Version)
	dst := []any{&job.CreatedAt, &job.UpdatedAt, &job.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// DeleteJob 删除职位，记录不存在时返回 sql.ErrNoRows
func (r *Repository) DeleteJob(ctx context.Context, id int64) error {
	query := `DELETE FROM jobs WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"
	"log/slog"
)

type migration struct {
	Name  string
	Query string
}

var migrations = []migration{
	{
		Name: "create_users",
		Query: `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email VARCHAR(190) NOT NULL,
				password_hash TEXT NOT NULL,
				first_name VARCHAR(120) NOT NULL,
				last_name VARCHAR(120) NOT NULL DEFAULT '',
				phone_number VARCHAR(20),
				phone_country_code VARCHAR(5),
				user_type VARCHAR(20) NOT NULL DEFAULT 'candidate',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				version INT NOT NULL DEFAULT 1,
				CONSTRAINT users_email_key UNIQUE (email),
				CONSTRAINT users_user_type_check CHECK (user_type IN ('candidate', 'employer', 'admin'))
			)
		`,
	},
	{
		Name: "create_jobs",
		Query: `
			CREATE TABLE IF NOT EXISTS jobs (
				id BIGSERIAL PRIMARY KEY,
				title VARCHAR(200) NOT NULL,
				company VARCHAR(100) NOT NULL,
				location VARCHAR(100) NOT NULL DEFAULT '',
				job_type VARCHAR(20) NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
				experience_level VARCHAR(20) NOT NULL DEFAULT '',
				department VARCHAR(100) NOT NULL DEFAULT '',
				category VARCHAR(100) NOT NULL DEFAULT '',
				description TEXT NOT NULL,
				requirements TEXT NOT NULL DEFAULT '',
				responsibilities TEXT NOT NULL DEFAULT '',
				benefits TEXT NOT NULL DEFAULT '',
				salary_min NUMERIC(12, 2),
				salary_max NUMERIC(12, 2),
				salary_currency CHAR(3),
				work_mode VARCHAR(20) NOT NULL DEFAULT '',
				education_level VARCHAR(20) NOT NULL DEFAULT '',
				skills VARCHAR(500) NOT NULL DEFAULT '',
				company_info TEXT NOT NULL DEFAULT '',
				company_logo_url VARCHAR(500) NOT NULL DEFAULT '',
				posted_by BIGINT NOT NULL,
				application_deadline TIMESTAMPTZ,
				start_date TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				version INT NOT NULL DEFAULT 1
			)
		`,
	},
	{
		Name:  "index_jobs_status_category",
		Query: `CREATE INDEX IF NOT EXISTS jobs_status_category_idx ON jobs (status, lower(category))`,
	},
	{
		Name:  "index_jobs_posted_by",
		Query: `CREATE INDEX IF NOT EXISTS jobs_posted_by_idx ON jobs (posted_by)`,
	},
	{
		Name: "create_resumes",
		Query: `
			CREATE TABLE IF NOT EXISTS resumes (
				id BIGSERIAL PRIMARY KEY,
				file_name VARCHAR(255) NOT NULL,
				file_type VARCHAR(100) NOT NULL,
				file_size BIGINT NOT NULL,
				file_path VARCHAR(500) NOT NULL,
				original_file_name VARCHAR(255) NOT NULL,
				is_primary BOOLEAN NOT NULL DEFAULT FALSE,
				description VARCHAR(500),
				user_id BIGINT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT resumes_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
			)
		`,
	},
	{
		Name:  "index_resumes_user_id",
		Query: `CREATE INDEX IF NOT EXISTS resumes_user_id_idx ON resumes (user_id)`,
	},
	{
		// 每个用户最多只有一份主简历
		Name:  "unique_primary_resume",
		Query: `CREATE UNIQUE INDEX IF NOT EXISTS resumes_one_primary_per_user ON resumes (user_id) WHERE is_primary`,
	},
}

// Migrate 在启动时建表，所有语句都可以重复执行
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	for _, m := range migrations {
		if _, err := r.dbpool.ExecContext(ctx, m.Query); err != nil {
			slog.Error("数据库迁移失败", "name", m.Name, "error", err)
			return err
		}
		slog.Debug("数据库迁移完成", "name", m.Name)
	}

	return nil
}

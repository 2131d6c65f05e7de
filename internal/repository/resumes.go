package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const resumeColumns = `id, file_name, file_type, file_size, file_path, original_file_name, is_primary, description, user_id, created_at, updated_at`

func scanResume(row rowScanner) (*domain.Resume, error) {
	resume := &domain.Resume{}
	dst := []any{
		&resume.ID,
		&resume.FileName,
		&resume.FileType,
		&resume.FileSize,
		&resume.FilePath,
		&resume.OriginalFileName,
		&resume.IsPrimary,
		&resume.Description,
		&resume.UserID,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return resume, nil
}

func (r *Repository) CreateResume(ctx context.Context, resume *domain.Resume) error {
	query := `
		INSERT INTO resumes (file_name, file_type, file_size, file_path, original_file_name, is_primary, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{resume.FileName, resume.FileType, resume.FileSize, resume.FilePath, resume.OriginalFileName, resume.IsPrimary, resume.Description, resume.UserID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&resume.ID, &resume.CreatedAt, &resume.UpdatedAt); err != nil {
		if constraintName(err) == "resumes_user_id_fkey" {
			return domain.NotFound("User not found with id: %d", resume.UserID)
		}
		return err
	}

	return nil
}

func (r *Repository) GetResumeByID(ctx context.Context, id int64) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanResume(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetResumesByUserID(ctx context.Context, userID int64) ([]*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := make([]*domain.Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resumes, nil
}

func (r *Repository) GetPrimaryResume(ctx context.Context, userID int64) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 AND is_primary`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanResume(r.dbpool.QueryRowContext(ctx, query, userID))
}

// SetPrimaryResume 在同一个事务中取消旧的主简历并设置新的主简历。
// 先锁住用户行，同一用户的并发调用会串行执行。简历不属于该用户时返回 sql.ErrNoRows。
func (r *Repository) SetPrimaryResume(ctx context.Context, userID, resumeID int64) (*domain.Resume, error) {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID); err != nil {
		return nil, err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resumes WHERE id = $1 AND user_id = $2)`, resumeID, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `UPDATE resumes SET is_primary = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_primary AND id <> $2`, userID, resumeID); err != nil {
		return nil, err
	}

	query := `
		UPDATE resumes SET is_primary = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + resumeColumns

	resume, err := scanResume(tx.QueryRowContext(ctx, query, resumeID, userID))
	if err != nil {
		if constraintName(err) == "resumes_one_primary_per_user" {
			return nil, domain.Conflict("Primary resume was changed concurrently, please retry")
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return resume, nil
}

func (r *Repository) DeleteResume(ctx context.Context, id int64) error {
	query := `DELETE FROM resumes WHERE id = $1`

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

package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, job Job) error {
	const q = `
	INSERT INTO jobs
		(job_id, employer_id, title, slug, description, requirements, salary,
		location, employment_type, status, application_url, posted_at,
		created_at, updated_at)
	VALUES
		(:job_id, :employer_id, :title, :slug, :description, :requirements, :salary,
		:location, :employment_type, :status, :application_url, :posted_at,
		:created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, job); err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Job, error) {
	const q = `
	SELECT *
	FROM jobs
	WHERE job_id = $1`

	var job Job
	if err := sqlx.GetContext(ctx, db, &job, q, id); err != nil {
		return Job{}, fmt.Errorf("selecting job[%s]: %w", id, err)
	}

	return job, nil
}

func FetchBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (Job, error) {
	const q = `
	SELECT *
	FROM jobs
	WHERE slug = $1`

	var job Job
	if err := sqlx.GetContext(ctx, db, &job, q, slug); err != nil {
		return Job{}, fmt.Errorf("selecting job by slug[%s]: %w", slug, err)
	}

	return job, nil
}

// FetchActive lists ACTIVE jobs, newest first, honoring the search
// and employment-type filters with LIMIT/OFFSET pagination.
func FetchActive(ctx context.Context, db sqlx.ExtContext, filter Filter) ([]Job, error) {
	var sb strings.Builder
	sb.WriteString(`
	SELECT *
	FROM jobs
	WHERE status = 'ACTIVE'`)

	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, " AND (title ILIKE $%d OR description ILIKE $%d)", n, n)
	}
	if filter.EmploymentType != "" {
		args = append(args, filter.EmploymentType)
		fmt.Fprintf(&sb, " AND employment_type = $%d", len(args))
	}

	sb.WriteString(" ORDER BY posted_at DESC")

	args = append(args, filter.PageSize)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, (filter.Page-1)*filter.PageSize)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	jobs := []Job{}
	if err := sqlx.SelectContext(ctx, db, &jobs, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("selecting active jobs: %w", err)
	}

	return jobs, nil
}

func FetchByEmployer(ctx context.Context, db sqlx.ExtContext, employerID string) ([]Job, error) {
	const q = `
	SELECT *
	FROM jobs
	WHERE employer_id = $1
	ORDER BY posted_at DESC`

	jobs := []Job{}
	if err := sqlx.SelectContext(ctx, db, &jobs, q, employerID); err != nil {
		return nil, fmt.Errorf("selecting jobs of employer[%s]: %w", employerID, err)
	}

	return jobs, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, job Job) error {
	const q = `
	UPDATE jobs
	SET
		title = :title,
		description = :description,
		requirements = :requirements,
		salary = :salary,
		location = :location,
		employment_type = :employment_type,
		status = :status,
		application_url = :application_url,
		updated_at = :updated_at
	WHERE job_id = :job_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, job); err != nil {
		return fmt.Errorf("updating job[%s]: %w", job.ID, err)
	}

	return nil
}

// Activate flips a job to ACTIVE. Used by the payment flow on a
// successful posting-fee payment.
func Activate(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `
	UPDATE jobs
	SET status = $2, updated_at = $3
	WHERE job_id = $1`

	if _, err := db.ExecContext(ctx, q, id, Active, time.Now().UTC()); err != nil {
		return fmt.Errorf("activating job[%s]: %w", id, err)
	}

	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `
	DELETE FROM jobs
	WHERE job_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting job[%s]: %w", id, err)
	}

	return nil
}

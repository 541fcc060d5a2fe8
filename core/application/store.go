package application

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, app Application) error {
	const q = `
	INSERT INTO applications
		(application_id, job_id, applicant_id, cover_letter, status, applied_at)
	VALUES
		(:application_id, :job_id, :applicant_id, :cover_letter, :status, :applied_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, app); err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}

	return nil
}

func FetchByApplicant(ctx context.Context, db sqlx.ExtContext, applicantID string) ([]Application, error) {
	const q = `
	SELECT *
	FROM applications
	WHERE applicant_id = $1
	ORDER BY applied_at DESC`

	apps := []Application{}
	if err := sqlx.SelectContext(ctx, db, &apps, q, applicantID); err != nil {
		return nil, fmt.Errorf("selecting applications of applicant[%s]: %w", applicantID, err)
	}

	return apps, nil
}

func FetchByJob(ctx context.Context, db sqlx.ExtContext, jobID string) ([]Application, error) {
	const q = `
	SELECT *
	FROM applications
	WHERE job_id = $1
	ORDER BY applied_at DESC`

	apps := []Application{}
	if err := sqlx.SelectContext(ctx, db, &apps, q, jobID); err != nil {
		return nil, fmt.Errorf("selecting applications of job[%s]: %w", jobID, err)
	}

	return apps, nil
}

package jobseeker

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, seeker JobSeeker) error {
	const q = `
	INSERT INTO job_seekers
		(user_id, first_name, last_name, resume_url, skills, updated_at)
	VALUES
		(:user_id, :first_name, :last_name, :resume_url, :skills, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, seeker); err != nil {
		return fmt.Errorf("inserting job seeker profile: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (JobSeeker, error) {
	const q = `
	SELECT *
	FROM job_seekers
	WHERE user_id = $1`

	var seeker JobSeeker
	if err := sqlx.GetContext(ctx, db, &seeker, q, userID); err != nil {
		return JobSeeker{}, fmt.Errorf("selecting job seeker[%s]: %w", userID, err)
	}

	return seeker, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, seeker JobSeeker) error {
	const q = `
	UPDATE job_seekers
	SET
		first_name = :first_name,
		last_name = :last_name,
		resume_url = :resume_url,
		skills = :skills,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, seeker); err != nil {
		return fmt.Errorf("updating job seeker[%s]: %w", seeker.UserID, err)
	}

	return nil
}

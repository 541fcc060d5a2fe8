package employer

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, emp Employer) error {
	const q = `
	INSERT INTO employers
		(user_id, company_name, description, website, logo_url, location, updated_at)
	VALUES
		(:user_id, :company_name, :description, :website, :logo_url, :location, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, emp); err != nil {
		return fmt.Errorf("inserting employer profile: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Employer, error) {
	const q = `
	SELECT *
	FROM employers
	WHERE user_id = $1`

	var emp Employer
	if err := sqlx.GetContext(ctx, db, &emp, q, userID); err != nil {
		return Employer{}, fmt.Errorf("selecting employer[%s]: %w", userID, err)
	}

	return emp, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, emp Employer) error {
	const q = `
	UPDATE employers
	SET
		company_name = :company_name,
		description = :description,
		website = :website,
		logo_url = :logo_url,
		location = :location,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, emp); err != nil {
		return fmt.Errorf("updating employer[%s]: %w", emp.UserID, err)
	}

	return nil
}

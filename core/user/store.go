package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, user User) error {
	const q = `
	INSERT INTO users
		(user_id, email, password_hash, role, active, created_at, updated_at)
	VALUES
		(:user_id, :email, :password_hash, :role, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, user); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `
	SELECT *
	FROM users
	WHERE user_id = $1`

	var user User
	if err := sqlx.GetContext(ctx, db, &user, q, id); err != nil {
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}

	return user, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `
	SELECT *
	FROM users
	WHERE email = $1`

	var user User
	if err := sqlx.GetContext(ctx, db, &user, q, email); err != nil {
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return user, nil
}

func UpdatePassword(ctx context.Context, db sqlx.ExtContext, id string, hash []byte) error {
	const q = `
	UPDATE users
	SET password_hash = $2, updated_at = $3
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating password of user[%s]: %w", id, err)
	}

	return nil
}

func UpdateRole(ctx context.Context, db sqlx.ExtContext, id string, role string) error {
	const q = `
	UPDATE users
	SET role = $2, updated_at = $3
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating role of user[%s]: %w", id, err)
	}

	return nil
}

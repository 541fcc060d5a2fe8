package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Mailer is the outgoing-mail collaborator. Sends are dispatched in
// the background and never fail the triggering request.
type Mailer interface {
	SendPasswordReset(to string, link string) error
}

type ResetToken struct {
	Hash   string    `db:"token_hash"`
	UserID string    `db:"user_id"`
	Expiry time.Time `db:"expiry"`
}

// Hash maps the plaintext token from the emailed link to its stored
// form. Only the hash ever touches the database.
func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func Create(ctx context.Context, db sqlx.ExtContext, tok ResetToken) error {
	const q = `
	INSERT INTO reset_tokens
		(token_hash, user_id, expiry)
	VALUES
		(:token_hash, :user_id, :expiry)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tok); err != nil {
		return fmt.Errorf("inserting reset token: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, hash string) (ResetToken, error) {
	const q = `
	SELECT *
	FROM reset_tokens
	WHERE token_hash = $1`

	var tok ResetToken
	if err := sqlx.GetContext(ctx, db, &tok, q, hash); err != nil {
		return ResetToken{}, fmt.Errorf("selecting reset token: %w", err)
	}

	return tok, nil
}

func DeleteByUser(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `
	DELETE FROM reset_tokens
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("deleting reset tokens of user[%s]: %w", userID, err)
	}

	return nil
}

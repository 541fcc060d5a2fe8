package order

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Create inserts the order. The session id carries a unique
// constraint and a conflict is a redelivered webhook, so the insert
// is a no-op in that case: the bool reports whether a row was
// actually written.
func Create(ctx context.Context, db sqlx.ExtContext, ord Order) (bool, error) {
	const q = `
	INSERT INTO orders
		(order_id, user_id, email, stripe_session_id, payment_status,
		amount_total, items, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :email, :stripe_session_id, :payment_status,
		:amount_total, :items, :created_at, :updated_at)
	ON CONFLICT (stripe_session_id) DO NOTHING`

	res, err := sqlx.NamedExecContext(ctx, db, q, ord)
	if err != nil {
		return false, fmt.Errorf("inserting order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Order, error) {
	const q = `
	SELECT *
	FROM orders
	WHERE user_id = $1
	ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q, userID); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, err)
	}

	return orders, nil
}

func FetchBySession(ctx context.Context, db sqlx.ExtContext, sessionID string) (Order, error) {
	const q = `
	SELECT *
	FROM orders
	WHERE stripe_session_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, sessionID); err != nil {
		return Order{}, fmt.Errorf("selecting order bound to session[%s]: %w", sessionID, err)
	}

	return ord, nil
}

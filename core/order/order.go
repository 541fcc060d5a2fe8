package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending Status = "PENDING"
	Paid    Status = "PAID"
	Failed  Status = "FAILED"
)

// Order is created exactly once per completed checkout session, by
// the webhook handler (or the PayPal capture handler). It survives
// the deletion of its user.
type Order struct {
	ID          string          `json:"id" db:"order_id"`
	UserID      *string         `json:"-" db:"user_id"`
	Email       string          `json:"email" db:"email"`
	SessionID   string          `json:"-" db:"stripe_session_id"`
	Status      Status          `json:"payment_status" db:"payment_status"`
	AmountTotal decimal.Decimal `json:"amount_total" db:"amount_total"`
	Items       types.JSONText  `json:"items" db:"items"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"-" db:"updated_at"`
}

type CheckoutNew struct {
	PriceID string `json:"priceId" validate:"required"`
	UserID  string `json:"userId" validate:"required,uuid"`
	JobID   string `json:"jobId" validate:"required,uuid"`
}

type PaypalCheckoutNew struct {
	JobID string `json:"jobId" validate:"required,uuid"`
}

// Metadata is the typed form of the opaque key-value strings carried
// across the provider round-trip. It is the only link between a
// checkout session and the local records, so parsing fails closed.
type Metadata struct {
	UserID string
	JobID  string
}

func ParseMetadata(md map[string]string) (Metadata, error) {
	meta := Metadata{
		UserID: md["user_id"],
		JobID:  md["job_id"],
	}

	if meta.UserID == "" {
		return Metadata{}, errors.New("session metadata is missing user_id")
	}
	if _, err := uuid.Parse(meta.UserID); err != nil {
		return Metadata{}, errors.New("session metadata carries a malformed user_id")
	}

	// job_id is optional: an order can exist without a job to activate.
	if meta.JobID != "" {
		if _, err := uuid.Parse(meta.JobID); err != nil {
			return Metadata{}, errors.New("session metadata carries a malformed job_id")
		}
	}

	return meta, nil
}

// amountFromMinor converts the provider's integer minor-unit amount
// to major units, e.g. 4999 to 49.99.
func amountFromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

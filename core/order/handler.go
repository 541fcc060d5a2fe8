package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/config"
	"github.com/irsalhamdi/job-board/core/claims"
	"github.com/irsalhamdi/job-board/core/job"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// HandleCheckout creates a Stripe checkout session for a posting fee
// and hands back the hosted payment URL. The user and job ids ride
// as session metadata so the webhook can recover them: no local
// state exists until the session completes.
func HandleCheckout(strp *stripecl.API, cfg config.Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CheckoutNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding checkout request: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		params := &stripe.CheckoutSessionParams{
			SuccessURL: stripe.String(cfg.FrontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:  stripe.String(cfg.FrontendURL + "/payment/canceled"),
			Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
			LineItems: []*stripe.CheckoutSessionLineItemParams{{
				Price:    stripe.String(cn.PriceID),
				Quantity: stripe.Int64(1),
			}},
		}
		params.AddMetadata("user_id", cn.UserID)
		params.AddMetadata("job_id", cn.JobID)

		s, err := strp.CheckoutSessions.New(params)
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		resp := struct {
			URL string `json:"url"`
		}{s.URL}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleWebhook turns a verified "checkout session completed" event
// into a persisted PAID order and activates the job named in the
// session metadata. Verification runs against the exact bytes
// received; any signature or parse failure is a 400 with no side
// effects. A 2xx tells the provider not to redeliver.
func HandleWebhook(db *sqlx.DB, strp *stripecl.API, cfg config.Stripe, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return weberr.BadRequest(errors.New("received stripe event is not signed"))
		}

		event, err := webhook.ConstructEvent(b, sig, cfg.WebhookSecret)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot construct stripe event: %w", err))
		}

		if event.Type != "checkout.session.completed" {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		var session stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode stripe event: %w", err))
		}

		meta, err := ParseMetadata(session.Metadata)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("rejecting session[%s]: %w", session.ID, err))
		}

		// The event payload may omit the line items, so the
		// session is read back from the provider in expanded
		// form. A failure here is the provider's, not the
		// caller's: a 500 asks for a redelivery.
		params := &stripe.CheckoutSessionParams{}
		params.AddExpand("line_items")
		full, err := strp.CheckoutSessions.Get(session.ID, params)
		if err != nil {
			return fmt.Errorf("retrieving session[%s] with line items: %w", session.ID, err)
		}

		ord, err := materialize(ctx, db, full, meta, log)
		if err != nil {
			return err
		}

		if ord != nil && meta.JobID != "" {
			activate(ctx, db, meta.JobID, log)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// materialize persists the PAID order for a completed session. A nil
// order with a nil error means the session was already processed by
// an earlier delivery.
func materialize(ctx context.Context, db *sqlx.DB, session *stripe.CheckoutSession, meta Metadata, log logrus.FieldLogger) (*Order, error) {
	// The user may have been deleted between checkout and webhook
	// delivery. The payment still happened: record the order
	// without an owner and log loudly.
	var userID *string
	usr, err := user.Fetch(ctx, db, meta.UserID)
	switch {
	case err == nil:
		userID = &usr.ID
	case errors.Is(err, sql.ErrNoRows):
		log.WithFields(logrus.Fields{
			"session": session.ID,
			"user":    meta.UserID,
		}).Warn("order user no longer exists, storing order without owner")
	default:
		return nil, fmt.Errorf("fetching user[%s]: %w", meta.UserID, err)
	}

	items := []byte("[]")
	if session.LineItems != nil {
		items, err = json.Marshal(session.LineItems.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding line items of session[%s]: %w", session.ID, err)
		}
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	now := time.Now().UTC()
	ord := Order{
		ID:          validate.GenerateID(),
		UserID:      userID,
		Email:       email,
		SessionID:   session.ID,
		Status:      Paid,
		AmountTotal: amountFromMinor(session.AmountTotal),
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	inserted, err := Create(ctx, db, ord)
	if err != nil {
		return nil, fmt.Errorf("creating order for session[%s]: %w", session.ID, err)
	}

	if !inserted {
		log.WithField("session", session.ID).Info("session already processed, skipping")
		return nil, nil
	}

	return &ord, nil
}

// activate flips the paid-for job to ACTIVE. A job that no longer
// exists is tolerated: the order stands either way.
func activate(ctx context.Context, db *sqlx.DB, jobID string, log logrus.FieldLogger) {
	if _, err := job.Fetch(ctx, db, jobID); err != nil {
		log.WithFields(logrus.Fields{
			"job":     jobID,
			"message": err,
		}).Warn("paid job cannot be activated, skipping")
		return
	}

	if err := job.Activate(ctx, db, jobID); err != nil {
		log.WithFields(logrus.Fields{
			"job":     jobID,
			"message": err,
		}).Warn("activating paid job failed")
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orders, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching orders of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

// HandlePaypalCheckout is the PayPal counterpart of the session
// initiator: the job id rides in the purchase unit reference and the
// payer's user id in its custom id, so the capture step can recover
// them without local pending state.
func HandlePaypalCheckout(db *sqlx.DB, pp *paypal.Client, cfg config.Paypal) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var cn PaypalCheckoutNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding checkout request: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		jb, err := job.Fetch(ctx, db, cn.JobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(errors.New("job not found"))
			}
			return fmt.Errorf("fetching job[%s]: %w", cn.JobID, err)
		}

		if jb.EmployerID != clm.UserID {
			return weberr.NotAuthorized(errors.New("job belongs to another employer"))
		}

		fee := amountFromMinor(cfg.PostingFee).StringFixed(2)
		units := []paypal.PurchaseUnitRequest{{
			ReferenceID: jb.ID,
			CustomID:    clm.UserID,
			Description: "Job posting: " + jb.Title,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: "USD",
				Value:    fee,
			},
		}}

		ord, err := pp.CreateOrder(ctx, "CAPTURE", units, nil, &paypal.ApplicationContext{})
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// HandlePaypalCapture captures an approved PayPal order and
// materializes it the same way the webhook does for Stripe.
func HandlePaypalCapture(db *sqlx.DB, pp *paypal.Client, cfg config.Paypal, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		providerID := web.Param(r, "id")

		resp, err := pp.CaptureOrder(ctx, providerID, paypal.CaptureOrderRequest{})
		if err != nil {
			return fmt.Errorf("capturing paypal order[%s]: %w", providerID, err)
		}

		if resp.Status != "COMPLETED" {
			return fmt.Errorf("captured order[%s] with status[%s] different from 'COMPLETED'", providerID, resp.Status)
		}

		amount := amountFromMinor(cfg.PostingFee)
		var jobID string
		if len(resp.PurchaseUnits) > 0 {
			unit := resp.PurchaseUnits[0]
			jobID = unit.ReferenceID
			if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
				capture := unit.Payments.Captures[0]
				if capture.Amount != nil {
					if parsed, err := decimal.NewFromString(capture.Amount.Value); err == nil {
						amount = parsed
					}
				}
			}
		}

		var email string
		if resp.Payer != nil {
			email = resp.Payer.EmailAddress
		}

		items, err := json.Marshal(resp.PurchaseUnits)
		if err != nil {
			return fmt.Errorf("encoding purchase units of order[%s]: %w", providerID, err)
		}

		now := time.Now().UTC()
		ord := Order{
			ID:          validate.GenerateID(),
			UserID:      &clm.UserID,
			Email:       email,
			SessionID:   resp.ID,
			Status:      Paid,
			AmountTotal: amount,
			Items:       items,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		inserted, err := Create(ctx, db, ord)
		if err != nil {
			return fmt.Errorf("creating order for paypal order[%s]: %w", providerID, err)
		}

		if inserted && jobID != "" {
			activate(ctx, db, jobID, log)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

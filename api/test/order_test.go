package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irsalhamdi/job-board/core/job"
	"github.com/irsalhamdi/job-board/core/order"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

type orderTest struct {
	*TestEnv
}

func TestOrder(t *testing.T) {
	env, err := NewTestEnv(t, "order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ot := &orderTest{env}
	jt := &jobTest{env}

	employerID := env.signupOK(t, "orders@test.io", "password1", "EMPLOYER")
	jb := jt.createJobOK(t, "Backend Engineer")

	// Starting a checkout creates nothing locally.
	sessionID := ot.checkoutOK(t, employerID, jb.ID)
	ot.listOrdersOK(t, 0)

	// A completed session becomes a paid order and activates the job.
	payload := ot.eventPayload(t, "checkout.session.completed", sessionID, employerID, jb.ID)
	ot.deliver(t, payload, env.WebhookSecret, http.StatusNoContent)

	orders := ot.listOrdersOK(t, 1)
	if want := decimal.RequireFromString("49.99"); !orders[0].AmountTotal.Equal(want) {
		t.Fatalf("order amount is %s, want %s", orders[0].AmountTotal, want)
	}
	if orders[0].Status != order.Paid {
		t.Fatalf("order status is %s, want %s", orders[0].Status, order.Paid)
	}
	if got := jt.getJobOK(t, jb.ID); got.Status != job.Active {
		t.Fatalf("paid job status is %s, want %s", got.Status, job.Active)
	}

	// Redelivery of the same event does not duplicate the order.
	ot.deliver(t, payload, env.WebhookSecret, http.StatusNoContent)
	ot.listOrdersOK(t, 1)

	ord, err := order.FetchBySession(context.Background(), env.DB, sessionID)
	if err != nil {
		t.Fatalf("fetching the order bound to the session: %v", err)
	}
	if ord.Status != order.Paid || !ord.AmountTotal.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("unexpected order after redelivery: %+v", ord)
	}
	if ord.UserID == nil || *ord.UserID != employerID {
		t.Fatalf("order owner is %v, want %s", ord.UserID, employerID)
	}

	// A bad signature is rejected and leaves no trace.
	ot.deliver(t, payload, "whsec_wrong_secret", http.StatusBadRequest)
	ot.listOrdersOK(t, 1)

	// Unrelated event types are acknowledged and ignored.
	ping := ot.eventPayload(t, "ping", sessionID, employerID, jb.ID)
	ot.deliver(t, ping, env.WebhookSecret, http.StatusNoContent)
	ot.listOrdersOK(t, 1)

	// A session without usable metadata fails closed.
	bare := ot.eventPayload(t, "checkout.session.completed", sessionID, "", "")
	ot.deliver(t, bare, env.WebhookSecret, http.StatusBadRequest)
	ot.listOrdersOK(t, 1)

	// A session the provider cannot return is the provider's fault:
	// a 500 asks for a redelivery, and nothing is recorded.
	unknown := ot.eventPayload(t, "checkout.session.completed", "cs_test_never_issued", employerID, jb.ID)
	ot.deliver(t, unknown, env.WebhookSecret, http.StatusInternalServerError)
	ot.listOrdersOK(t, 1)

	// A checkout the provider rejects surfaces its message as a 400.
	env.Stripe.rejectPrice = "price_unknown"
	ot.checkoutFails(t, employerID, jb.ID)
	env.Stripe.rejectPrice = ""

	// The job may be gone by the time the webhook lands. The order
	// is recorded anyway.
	ghostJob := uuid.NewString()
	s2 := ot.checkoutOK(t, employerID, ghostJob)
	p2 := ot.eventPayload(t, "checkout.session.completed", s2, employerID, ghostJob)
	ot.deliver(t, p2, env.WebhookSecret, http.StatusNoContent)

	orders = ot.listOrdersOK(t, 2)
	if orders[0].CreatedAt.Before(orders[1].CreatedAt) {
		t.Fatal("orders are not listed newest first")
	}

	// So may the user: the payment still stands, without an owner.
	ghostUser := uuid.NewString()
	s3 := ot.checkoutOK(t, ghostUser, jb.ID)
	p3 := ot.eventPayload(t, "checkout.session.completed", s3, ghostUser, jb.ID)
	ot.deliver(t, p3, env.WebhookSecret, http.StatusNoContent)

	var unowned int
	if err := env.DB.Get(&unowned, "SELECT COUNT(*) FROM orders WHERE user_id IS NULL"); err != nil {
		t.Fatalf("counting unowned orders: %v", err)
	}
	if unowned != 1 {
		t.Fatalf("got %d unowned orders, want 1", unowned)
	}

	// The unowned order does not leak into anyone's listing.
	ot.listOrdersOK(t, 2)
}

func TestPaypalOrder(t *testing.T) {
	env, err := NewTestEnv(t, "paypal_order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ot := &orderTest{env}
	jt := &jobTest{env}

	env.signupOK(t, "paypal@test.io", "password1", "EMPLOYER")
	jb := jt.createJobOK(t, "Data Engineer")

	var created struct {
		ID string `json:"id"`
	}
	code := env.do(t, http.MethodPost, "/orders/paypal", map[string]string{"jobId": jb.ID}, &created)
	if code != http.StatusOK {
		t.Fatalf("can't create paypal order: status code %d", code)
	}

	code = env.do(t, http.MethodPost, "/orders/paypal/"+created.ID+"/capture", nil, nil)
	if code != http.StatusNoContent {
		t.Fatalf("can't capture paypal order: status code %d", code)
	}

	if got := jt.getJobOK(t, jb.ID); got.Status != job.Active {
		t.Fatalf("paid job status is %s, want %s", got.Status, job.Active)
	}

	orders := ot.listOrdersOK(t, 1)
	if want := decimal.RequireFromString("49.99"); !orders[0].AmountTotal.Equal(want) {
		t.Fatalf("order amount is %s, want %s", orders[0].AmountTotal, want)
	}

	// Capturing the same provider order twice stays idempotent.
	code = env.do(t, http.MethodPost, "/orders/paypal/"+created.ID+"/capture", nil, nil)
	if code != http.StatusNoContent {
		t.Fatalf("can't re-capture paypal order: status code %d", code)
	}
	ot.listOrdersOK(t, 1)

	// Another employer cannot pay for someone else's job.
	env.logoutOK(t)
	env.signupOK(t, "other-employer@test.io", "password1", "EMPLOYER")
	code = env.do(t, http.MethodPost, "/orders/paypal", map[string]string{"jobId": jb.ID}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("creating a paypal order for a foreign job: status code %d, want 401", code)
	}
}

// checkoutOK starts a checkout session and returns the session id
// embedded in the returned payment URL.
func (ot *orderTest) checkoutOK(t *testing.T, userID string, jobID string) string {
	t.Helper()

	body := map[string]string{
		"priceId": "price_posting_fee",
		"userId":  userID,
		"jobId":   jobID,
	}

	var resp struct {
		URL string `json:"url"`
	}
	if code := ot.do(t, http.MethodPost, "/create-checkout-session", body, &resp); code != http.StatusOK {
		t.Fatalf("can't create checkout session: status code %d", code)
	}

	if resp.URL == "" {
		t.Fatal("checkout response carries no payment URL")
	}

	return path.Base(resp.URL)
}

// checkoutFails starts a checkout the provider rejects and checks the
// provider's message reaches the caller.
func (ot *orderTest) checkoutFails(t *testing.T, userID string, jobID string) {
	t.Helper()

	body := map[string]string{
		"priceId": "price_unknown",
		"userId":  userID,
		"jobId":   jobID,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, ot.URL+"/create-checkout-session", &buf)
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := ot.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("rejected checkout: status code %s, want 400", w.Status)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding rejected checkout response: %v", err)
	}
	if !strings.Contains(resp.Error, "No such price") {
		t.Fatalf("rejected checkout error %q does not carry the provider message", resp.Error)
	}
}

// eventPayload builds the raw body of a provider event for the given
// session. Empty user and job ids are left out of the metadata.
func (ot *orderTest) eventPayload(t *testing.T, eventType string, sessionID string, userID string, jobID string) []byte {
	t.Helper()

	md := map[string]string{}
	if userID != "" {
		md["user_id"] = userID
	}
	if jobID != "" {
		md["job_id"] = jobID
	}

	obj := map[string]any{
		"id":       sessionID,
		"mode":     stripe.CheckoutSessionModePayment,
		"metadata": md,
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}

	evt := stripe.Event{
		APIVersion: "2022-11-15",
		Type:       eventType,
		Data: &stripe.EventData{
			Raw: json.RawMessage(raw),
		},
	}

	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}

	return b
}

// deliver signs the payload with the given secret and posts it to the
// webhook endpoint.
func (ot *orderTest) deliver(t *testing.T, payload []byte, secret string, wantCode int) {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	r, err := http.NewRequest(http.MethodPost, ot.URL+"/webhook", bytes.NewBuffer(payload))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Stripe-Signature", signed.Header)

	w, err := ot.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != wantCode {
		t.Fatalf("webhook delivery: status code %s, want %d", w.Status, wantCode)
	}
}

func (ot *orderTest) listOrdersOK(t *testing.T, want int) []order.Order {
	t.Helper()

	var orders []order.Order
	if code := ot.do(t, http.MethodGet, "/orders", nil, &orders); code != http.StatusOK {
		t.Fatalf("can't list orders: status code %d", code)
	}

	if len(orders) != want {
		t.Fatalf("got %d orders, want %d", len(orders), want)
	}

	return orders
}

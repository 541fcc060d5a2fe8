package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/job-board/api"
	"github.com/irsalhamdi/job-board/api/background"
	"github.com/irsalhamdi/job-board/config"
	"github.com/irsalhamdi/job-board/core/auth"
	"github.com/irsalhamdi/job-board/database"
	"github.com/irsalhamdi/job-board/email"
	"github.com/irsalhamdi/job-board/rate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

const webhookSecret = "whsec_test_secret"

// mailRecorder satisfies api.Mailer and keeps every send for the
// tests to inspect.
type mailRecorder struct {
	mu         sync.Mutex
	ResetLinks []string
	Confirms   []email.ApplicationData
	Notifies   []email.ApplicationData
}

func (m *mailRecorder) SendPasswordReset(to string, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetLinks = append(m.ResetLinks, link)
	return nil
}

func (m *mailRecorder) SendApplicationConfirmation(data email.ApplicationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirms = append(m.Confirms, data)
	return nil
}

func (m *mailRecorder) SendEmployerNotification(data email.ApplicationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifies = append(m.Notifies, data)
	return nil
}

// wait polls until cond is true or the deadline passes. Used for the
// background email dispatches.
func (m *mailRecorder) wait(t *testing.T, cond func(m *mailRecorder) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		ok := cond(m)
		m.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type TestEnv struct {
	DB            *sqlx.DB
	Server        *httptest.Server
	URL           string
	Stripe        *mockStripe
	Paypal        *mockPaypal
	Mail          *mailRecorder
	WebhookSecret string

	client *http.Client
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	t.Cleanup(func() { pool.Purge(res) })

	cfgDB := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       res.GetHostPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(cfgDB)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return database.StatusCheck(ctx, db)
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	mockStrp := &mockStripe{amountTotal: 4999}
	stripeSrv := httptest.NewServer(mockStrp.handle())
	t.Cleanup(stripeSrv.Close)

	strp := &stripecl.API{}
	strp.Init("sk_test_123", &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(stripeSrv.URL),
		}),
	})

	mockPP := &mockPaypal{}
	paypalSrv := httptest.NewServer(mockPP.handle())
	t.Cleanup(paypalSrv.Close)

	pp, err := paypal.NewClient("test-client", "test-secret", paypalSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}
	if _, err := pp.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("fetching mock paypal token: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour

	mail := &mailRecorder{}
	bg := background.New(logger)

	mux := api.APIMux(api.APIConfig{
		Log:          logger,
		DB:           db,
		Session:      sessionManager,
		Mailer:       mail,
		ResetURL:     "http://localhost:3000/reset-password",
		TokenTimeout: 15 * time.Minute,
		Background:   bg,
		Paypal:       pp,
		PaypalCfg:    config.Paypal{PostingFee: 4999},
		Stripe:       strp,
		StripeCfg: config.Stripe{
			WebhookSecret: webhookSecret,
			FrontendURL:   "http://localhost:3000",
		},
		Providers:    map[string]auth.Provider{},
		LoginLimiter: rate.NewLimiter(1000, 100, 1000),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}

	env := &TestEnv{
		DB:            db,
		Server:        srv,
		URL:           srv.URL,
		Stripe:        mockStrp,
		Paypal:        mockPP,
		Mail:          mail,
		WebhookSecret: webhookSecret,
		client:        &http.Client{Jar: jar},
	}

	return env, nil
}

func (e *TestEnv) Client() *http.Client {
	return e.client
}

// do sends a JSON request through the session-aware client and
// decodes the response body into out when it is non-nil.
func (e *TestEnv) do(t *testing.T, method string, path string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	r, err := http.NewRequest(method, e.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := e.client.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding response of %s %s: %v", method, path, err)
		}
	}

	return w.StatusCode
}

func (e *TestEnv) signupOK(t *testing.T, userEmail string, pass string, userType string) string {
	t.Helper()

	var usr struct {
		ID string `json:"id"`
	}
	body := map[string]string{"email": userEmail, "password": pass, "userType": userType}
	if code := e.do(t, http.MethodPost, "/auth/signup", body, &usr); code != http.StatusCreated {
		t.Fatalf("can't sign up %s: status code %d", userEmail, code)
	}

	return usr.ID
}

func (e *TestEnv) loginOK(t *testing.T, userEmail string, pass string) {
	t.Helper()

	body := map[string]string{"email": userEmail, "password": pass}
	if code := e.do(t, http.MethodPost, "/auth/login", body, nil); code != http.StatusOK {
		t.Fatalf("can't log in %s: status code %d", userEmail, code)
	}
}

func (e *TestEnv) logoutOK(t *testing.T) {
	t.Helper()

	if code := e.do(t, http.MethodPost, "/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("can't log out: status code %d", code)
	}
}

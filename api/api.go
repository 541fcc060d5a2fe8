package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/job-board/api/background"
	"github.com/irsalhamdi/job-board/api/middleware"
	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/config"
	"github.com/irsalhamdi/job-board/core/application"
	"github.com/irsalhamdi/job-board/core/auth"
	"github.com/irsalhamdi/job-board/core/employer"
	"github.com/irsalhamdi/job-board/core/job"
	"github.com/irsalhamdi/job-board/core/jobseeker"
	"github.com/irsalhamdi/job-board/core/order"
	"github.com/irsalhamdi/job-board/core/token"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/rate"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// Mailer is everything the routes need from the outgoing-mail side.
type Mailer interface {
	token.Mailer
	application.Mailer
}

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Mailer           Mailer
	ResetURL         string
	TokenTimeout     time.Duration
	Background       *background.Background
	Paypal           *paypal.Client
	PaypalCfg        config.Paypal
	Stripe           *stripecl.API
	StripeCfg        config.Stripe
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	LoginLimiter     *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	asEmployer := auth.Employer(cfg.Session)
	asSeeker := auth.Seeker(cfg.Session)
	limited := middleware.RateLimit(cfg.LoginLimiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session), authen)
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodPost, "/auth/password/change", user.HandleChangePassword(cfg.DB), authen)
	a.Handle(http.MethodPost, "/auth/password/reset", token.HandleRecover(cfg.DB, cfg.Mailer, cfg.ResetURL, cfg.TokenTimeout, cfg.Background), limited)
	a.Handle(http.MethodPost, "/auth/password/reset/confirm", token.HandleRecoverConfirm(cfg.DB))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/type", auth.HandleSetType(cfg.DB, cfg.Session), authen)

	a.Handle(http.MethodGet, "/employers/profile", employer.HandleShow(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodPut, "/employers/profile", employer.HandleUpdate(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodGet, "/job-seekers/profile", jobseeker.HandleShow(cfg.DB), authen, asSeeker)
	a.Handle(http.MethodPut, "/job-seekers/profile", jobseeker.HandleUpdate(cfg.DB), authen, asSeeker)

	a.Handle(http.MethodGet, "/jobs/employer", job.HandleListByEmployer(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodGet, "/jobs/slug/{slug}", job.HandleShowBySlug(cfg.DB))
	a.Handle(http.MethodGet, "/jobs/{job_id}/applications", application.HandleListByJob(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodGet, "/jobs/{id}", job.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/jobs", job.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/jobs", job.HandleCreate(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodPut, "/jobs/{id}", job.HandleUpdate(cfg.DB), authen, asEmployer)
	a.Handle(http.MethodDelete, "/jobs/{id}", job.HandleDelete(cfg.DB), authen, asEmployer)

	a.Handle(http.MethodPost, "/applications", application.HandleCreate(cfg.DB, cfg.Mailer, cfg.Background), authen, asSeeker)
	a.Handle(http.MethodGet, "/applications", application.HandleListOwn(cfg.DB), authen, asSeeker)

	a.Handle(http.MethodPost, "/create-checkout-session", order.HandleCheckout(cfg.Stripe, cfg.StripeCfg))
	a.Handle(http.MethodPost, "/webhook", order.HandleWebhook(cfg.DB, cfg.Stripe, cfg.StripeCfg, cfg.Log))
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/orders/paypal", order.HandlePaypalCheckout(cfg.DB, cfg.Paypal, cfg.PaypalCfg), authen, asEmployer)
	a.Handle(http.MethodPost, "/orders/paypal/{id}/capture", order.HandlePaypalCapture(cfg.DB, cfg.Paypal, cfg.PaypalCfg, cfg.Log), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

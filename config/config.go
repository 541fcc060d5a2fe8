package config

import "time"

type Config struct {
	Web     Web
	DB      DB
	Cors    Cors
	Session Session
	Email   Email
	Stripe  Stripe
	Paypal  Paypal
	Oauth   Oauth
	Rate    Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:jobboard"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string `conf:"default:"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

type Email struct {
	Host     string `conf:"default:localhost"`
	Port     int    `conf:"default:25"`
	Address  string `conf:"default:no-reply@jobboard.local"`
	Password string `conf:"default:,mask"`

	// ResetURL is the frontend page the emailed password reset
	// token gets appended to.
	ResetURL     string        `conf:"default:http://localhost:3000/reset-password"`
	TokenTimeout time.Duration `conf:"default:15m"`
}

type Stripe struct {
	APISecret     string `conf:"default:,mask"`
	WebhookSecret string `conf:"default:,mask"`

	// FrontendURL is the base used to build the success and cancel
	// redirects embedded in every checkout session.
	FrontendURL string `conf:"default:http://localhost:3000"`
}

type Paypal struct {
	ClientID string `conf:"default:,mask"`
	Secret   string `conf:"default:,mask"`
	URL      string `conf:"default:https://api.sandbox.paypal.com"`

	// PostingFee is the job posting price in USD minor units.
	PostingFee int64 `conf:"default:4999"`
}

type OauthProvider struct {
	Client      string `conf:"default:"`
	Secret      string `conf:"default:,mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Oauth struct {
	Google           OauthProvider
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000"`
}

type Rate struct {
	Burst     int     `conf:"default:5"`
	ExpiryMin int     `conf:"default:60"`
	RPS       float64 `conf:"default:0.2"`
}

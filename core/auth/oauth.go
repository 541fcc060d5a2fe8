package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/random"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	Verifier *oidc.IDTokenVerifier
	Config   oauth2.Config
}

// MakeProviders runs OIDC discovery for every configured provider.
// Called once at startup with a discovery timeout.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))
	for _, cfg := range cfgs {
		p, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider %s: %w", cfg.Name, err)
		}

		provs[cfg.Name] = Provider{
			Verifier: p.Verifier(&oidc.Config{ClientID: cfg.Client}),
			Config: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "email"},
			},
		}
	}

	return provs, nil
}

func HandleOauthLogin(sm *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}

		sm.Put(ctx, stateKey, state)

		http.Redirect(w, r, prov.Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, sm *scs.SessionManager, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state := sm.PopString(ctx, stateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		tok, err := prov.Config.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("exchanging oauth code: %w", err))
		}

		rawID, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token carries no id_token"))
		}

		idToken, err := prov.Verifier.Verify(ctx, rawID)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying id_token: %w", err))
		}

		var idClaims struct {
			Email    string `json:"email"`
			Verified bool   `json:"email_verified"`
		}
		if err := idToken.Claims(&idClaims); err != nil {
			return fmt.Errorf("extracting id_token claims: %w", err)
		}

		if !idClaims.Verified {
			return weberr.BadRequest(errors.New("oauth email is not verified"))
		}

		usr, err := user.FetchByEmail(ctx, db, idClaims.Email)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("fetching user by email: %w", err)
			}

			// First social login: the user picks a type later
			// through the user-type endpoint.
			now := time.Now().UTC()
			usr = user.User{
				ID:           validate.GenerateID(),
				Email:        idClaims.Email,
				PasswordHash: []byte{},
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := user.Create(ctx, db, usr); err != nil {
				return fmt.Errorf("creating user from oauth login: %w", err)
			}
		}

		if err := login(ctx, sm, usr.ID, usr.Role); err != nil {
			return err
		}

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
		return nil
	}
}

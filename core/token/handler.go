package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/job-board/api/background"
	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/database"
	"github.com/irsalhamdi/job-board/random"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type RecoverNew struct {
	Email string `json:"email" validate:"required,email"`
}

type RecoverConfirm struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,gte=8,lte=72"`
}

// HandleRecover emails a password reset link. The response does not
// reveal whether the address is registered.
func HandleRecover(db *sqlx.DB, mailer Mailer, resetURL string, timeout time.Duration, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rec RecoverNew
		if err := web.Decode(w, r, &rec); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding recovery request: %w", err))
		}

		if err := validate.Check(rec); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		sent := struct {
			Message string `json:"message"`
		}{"password reset email sent"}

		usr, err := user.FetchByEmail(ctx, db, rec.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return web.Respond(ctx, w, sent, http.StatusOK)
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		plain, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating reset token: %w", err)
		}

		tok := ResetToken{
			Hash:   Hash(plain),
			UserID: usr.ID,
			Expiry: time.Now().UTC().Add(timeout),
		}

		if err := Create(ctx, db, tok); err != nil {
			return fmt.Errorf("storing reset token: %w", err)
		}

		link := resetURL + "/" + plain
		bg.Add("password-reset-email", func() error {
			return mailer.SendPasswordReset(usr.Email, link)
		})

		return web.Respond(ctx, w, sent, http.StatusOK)
	}
}

func HandleRecoverConfirm(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var conf RecoverConfirm
		if err := web.Decode(w, r, &conf); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding recovery confirmation: %w", err))
		}

		if err := validate.Check(conf); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		tok, err := Fetch(ctx, db, Hash(conf.Token))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.BadRequest(errors.New("invalid token"))
			}
			return fmt.Errorf("fetching reset token: %w", err)
		}

		if time.Now().UTC().After(tok.Expiry) {
			return weberr.BadRequest(errors.New("token has expired"))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(conf.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing new password: %w", err)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.UpdatePassword(ctx, tx, tok.UserID, hash); err != nil {
				return err
			}
			return DeleteByUser(ctx, tx, tok.UserID)
		})
		if err != nil {
			return fmt.Errorf("resetting password of user[%s]: %w", tok.UserID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

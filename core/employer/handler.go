package employer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/claims"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		emp, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching employer[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, emp, http.StatusOK)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up EmployerUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding employer update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		emp, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching employer[%s]: %w", clm.UserID, err)
		}

		if up.CompanyName != nil {
			emp.CompanyName = *up.CompanyName
		}
		if up.Description != nil {
			emp.Description = *up.Description
		}
		if up.Website != nil {
			emp.Website = *up.Website
		}
		if up.LogoURL != nil {
			emp.LogoURL = *up.LogoURL
		}
		if up.Location != nil {
			emp.Location = *up.Location
		}
		emp.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, emp); err != nil {
			return fmt.Errorf("updating employer[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, emp, http.StatusOK)
	}
}

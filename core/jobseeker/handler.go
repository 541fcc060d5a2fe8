package jobseeker

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

		seeker, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job seeker[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, seeker, http.StatusOK)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up JobSeekerUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding job seeker update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		seeker, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job seeker[%s]: %w", clm.UserID, err)
		}

		if up.FirstName != nil {
			seeker.FirstName = *up.FirstName
		}
		if up.LastName != nil {
			seeker.LastName = *up.LastName
		}
		if up.ResumeURL != nil {
			seeker.ResumeURL = *up.ResumeURL
		}
		if up.Skills != nil {
			seeker.Skills = *up.Skills
		}
		seeker.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, seeker); err != nil {
			return fmt.Errorf("updating job seeker[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, seeker, http.StatusOK)
	}
}

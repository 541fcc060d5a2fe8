package application

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
	"github.com/irsalhamdi/job-board/core/claims"
	"github.com/irsalhamdi/job-board/core/employer"
	"github.com/irsalhamdi/job-board/core/job"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/database"
	"github.com/irsalhamdi/job-board/email"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
)

// Mailer is the best-effort notification collaborator. Failures are
// logged by the background runner, never surfaced to the applicant.
type Mailer interface {
	SendApplicationConfirmation(data email.ApplicationData) error
	SendEmployerNotification(data email.ApplicationData) error
}

func HandleCreate(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var an ApplicationNew
		if err := web.Decode(w, r, &an); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding application: %w", err))
		}

		if err := validate.Check(an); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		jb, err := job.Fetch(ctx, db, an.JobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(errors.New("job not found"))
			}
			return fmt.Errorf("fetching job[%s]: %w", an.JobID, err)
		}

		if jb.Status != job.Active {
			err := errors.New("this job is not accepting applications")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		app := Application{
			ID:          validate.GenerateID(),
			JobID:       jb.ID,
			ApplicantID: clm.UserID,
			CoverLetter: an.CoverLetter,
			Status:      Pending,
			AppliedAt:   time.Now().UTC(),
		}

		if err := Create(ctx, db, app); err != nil {
			if database.IsUniqueViolation(err) {
				err := errors.New("you have already applied for this job")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return fmt.Errorf("creating application: %w", err)
		}

		notify(ctx, db, mailer, bg, app, jb)

		return web.Respond(ctx, w, app, http.StatusCreated)
	}
}

// notify dispatches the applicant confirmation and the employer
// notification. Lookups happen inline so the emails carry names, but
// any failure here only costs the emails, not the application.
func notify(ctx context.Context, db *sqlx.DB, mailer Mailer, bg *background.Background, app Application, jb job.Job) {
	applicant, err := user.Fetch(ctx, db, app.ApplicantID)
	if err != nil {
		return
	}

	empUser, err := user.Fetch(ctx, db, jb.EmployerID)
	if err != nil {
		return
	}

	company := empUser.Email
	if emp, err := employer.Fetch(ctx, db, jb.EmployerID); err == nil && emp.CompanyName != "" {
		company = emp.CompanyName
	}

	data := email.ApplicationData{
		ApplicantEmail: applicant.Email,
		EmployerEmail:  empUser.Email,
		JobTitle:       jb.Title,
		CompanyName:    company,
		AppliedDate:    app.AppliedAt.Format("January 2, 2006"),
		CoverLetter:    app.CoverLetter,
	}

	bg.Add("application-confirmation-email", func() error {
		return mailer.SendApplicationConfirmation(data)
	})

	bg.Add("employer-notification-email", func() error {
		return mailer.SendEmployerNotification(data)
	})
}

func HandleListOwn(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		apps, err := FetchByApplicant(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching applications of applicant[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, apps, http.StatusOK)
	}
}

func HandleListByJob(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		jobID := web.Param(r, "job_id")
		if err := validate.CheckID(jobID); err != nil {
			return weberr.BadRequest(err)
		}

		jb, err := job.Fetch(ctx, db, jobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(errors.New("job not found"))
			}
			return fmt.Errorf("fetching job[%s]: %w", jobID, err)
		}

		if jb.EmployerID != clm.UserID && !claims.IsAdmin(ctx) {
			return weberr.NotAuthorized(errors.New("job belongs to another employer"))
		}

		apps, err := FetchByJob(ctx, db, jobID)
		if err != nil {
			return fmt.Errorf("fetching applications of job[%s]: %w", jobID, err)
		}

		return web.Respond(ctx, w, apps, http.StatusOK)
	}
}

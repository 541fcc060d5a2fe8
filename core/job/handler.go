package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/claims"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func parseFilter(r *http.Request) (Filter, error) {
	f := Filter{
		Search:         r.URL.Query().Get("search"),
		EmploymentType: r.URL.Query().Get("employment_type"),
		Page:           1,
		PageSize:       defaultPageSize,
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Filter{}, fmt.Errorf("invalid page %q", raw)
		}
		f.Page = page
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return Filter{}, fmt.Errorf("invalid page_size %q", raw)
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		f.PageSize = size
	}

	return f, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		filter, err := parseFilter(r)
		if err != nil {
			return weberr.BadRequest(err)
		}

		jobs, err := FetchActive(ctx, db, filter)
		if err != nil {
			return fmt.Errorf("fetching active jobs: %w", err)
		}

		return web.Respond(ctx, w, jobs, http.StatusOK)
	}
}

func HandleListByEmployer(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		jobs, err := FetchByEmployer(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching jobs of employer[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, jobs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		job, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, job, http.StatusOK)
	}
}

func HandleShowBySlug(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		job, err := FetchBySlug(ctx, db, slug)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job by slug[%s]: %w", slug, err)
		}

		return web.Respond(ctx, w, job, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var jn JobNew
		if err := web.Decode(w, r, &jn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding job: %w", err))
		}

		if err := validate.Check(jn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		location := jn.Location
		if location == "" {
			location = "Remote"
		}

		now := time.Now().UTC()
		job := Job{
			ID:             validate.GenerateID(),
			EmployerID:     clm.UserID,
			Title:          jn.Title,
			Slug:           MakeSlug(jn.Title),
			Description:    jn.Description,
			Requirements:   jn.Requirements,
			Salary:         jn.Salary,
			Location:       location,
			EmploymentType: jn.EmploymentType,
			Status:         Draft,
			ApplicationURL: jn.ApplicationURL,
			PostedAt:       now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := Create(ctx, db, job); err != nil {
			return fmt.Errorf("creating job: %w", err)
		}

		return web.Respond(ctx, w, job, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var up JobUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding job update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		job, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job[%s]: %w", id, err)
		}

		if job.EmployerID != clm.UserID && !claims.IsAdmin(ctx) {
			return weberr.NotAuthorized(errors.New("job belongs to another employer"))
		}

		if up.Title != nil {
			job.Title = *up.Title
		}
		if up.Description != nil {
			job.Description = *up.Description
		}
		if up.Requirements != nil {
			job.Requirements = *up.Requirements
		}
		if up.Salary != nil {
			job.Salary = *up.Salary
		}
		if up.Location != nil {
			job.Location = *up.Location
		}
		if up.EmploymentType != nil {
			job.EmploymentType = *up.EmploymentType
		}
		if up.Status != nil {
			job.Status = *up.Status
		}
		if up.ApplicationURL != nil {
			job.ApplicationURL = *up.ApplicationURL
		}
		job.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, job); err != nil {
			return fmt.Errorf("updating job[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, job, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		job, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching job[%s]: %w", id, err)
		}

		if job.EmployerID != clm.UserID && !claims.IsAdmin(ctx) {
			return weberr.NotAuthorized(errors.New("job belongs to another employer"))
		}

		if err := Delete(ctx, db, id); err != nil {
			return fmt.Errorf("deleting job[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

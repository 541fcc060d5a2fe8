package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/claims"
	"github.com/irsalhamdi/job-board/core/employer"
	"github.com/irsalhamdi/job-board/core/jobseeker"
	"github.com/irsalhamdi/job-board/core/user"
	"github.com/irsalhamdi/job-board/database"
	"github.com/irsalhamdi/job-board/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func userTypeRole(userType string) string {
	switch userType {
	case claims.RoleEmployer:
		return claims.RoleEmployer
	case claims.RoleSeeker:
		return claims.RoleSeeker
	}
	return ""
}

// createProfile adds the role-specific profile row next to the user,
// so profile updates always have a target to hit.
func createProfile(ctx context.Context, tx sqlx.ExtContext, userID string, role string) error {
	now := time.Now().UTC()

	switch role {
	case claims.RoleEmployer:
		emp := employer.Employer{UserID: userID, UpdatedAt: now}
		if err := employer.Create(ctx, tx, emp); err != nil {
			return fmt.Errorf("creating employer profile: %w", err)
		}
	case claims.RoleSeeker:
		seeker := jobseeker.JobSeeker{UserID: userID, UpdatedAt: now}
		if err := jobseeker.Create(ctx, tx, seeker); err != nil {
			return fmt.Errorf("creating job seeker profile: %w", err)
		}
	}

	return nil
}

func HandleSignup(db *sqlx.DB, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var signup user.Signup
		if err := web.Decode(w, r, &signup); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup: %w", err))
		}

		if err := validate.Check(signup); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Email:        signup.Email,
			Role:         userTypeRole(signup.UserType),
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Create(ctx, tx, usr); err != nil {
				return err
			}
			return createProfile(ctx, tx, usr.ID, usr.Role)
		})
		if err != nil {
			if database.IsUniqueViolation(err) {
				err := errors.New("email already registered")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return fmt.Errorf("creating user: %w", err)
		}

		if err := login(ctx, sm, usr.ID, usr.Role); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var creds user.Login
		if err := web.Decode(w, r, &creds); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login: %w", err))
		}

		if err := validate.Check(creds); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := user.FetchByEmail(ctx, db, creds.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotAuthorized(errors.New("wrong credentials"))
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(creds.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong credentials"))
		}

		if !usr.Active {
			return weberr.NotAuthorized(errors.New("user is not active"))
		}

		if err := login(ctx, sm, usr.ID, usr.Role); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := sm.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleSetType lets a user who signed up without a role (social
// login) pick one. The role is written once and never switched.
func HandleSetType(db *sqlx.DB, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up user.TypeUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding user type: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if clm.Role != "" {
			err := errors.New("user type already set")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		newRole := userTypeRole(up.UserType)
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.UpdateRole(ctx, tx, clm.UserID, newRole); err != nil {
				return err
			}
			return createProfile(ctx, tx, clm.UserID, newRole)
		})
		if err != nil {
			return fmt.Errorf("setting user type: %w", err)
		}

		sm.Put(ctx, roleKey, newRole)

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

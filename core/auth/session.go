package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/job-board/api/web"
	"github.com/irsalhamdi/job-board/api/weberr"
	"github.com/irsalhamdi/job-board/core/claims"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
	stateKey  = "oauth_state"
)

// LoadAndSave adapts the scs session manager to the web.Handler
// chain. The session token is committed lazily, on the first write
// to the response, so handlers further down can still mutate it.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			var token string
			if cookie, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := sm.Load(ctx, token)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			sw := &sessionWriter{ResponseWriter: w, sm: sm, ctx: ctx}
			if err := handler(ctx, sw, r.WithContext(ctx)); err != nil {
				return err
			}

			sw.commit()
			return nil
		}
		return h
	}
	return m
}

type sessionWriter struct {
	http.ResponseWriter
	sm        *scs.SessionManager
	ctx       context.Context
	committed bool
}

func (sw *sessionWriter) commit() {
	if sw.committed {
		return
	}
	sw.committed = true

	switch sw.sm.Status(sw.ctx) {
	case scs.Modified:
		token, expiry, err := sw.sm.Commit(sw.ctx)
		if err != nil {
			return
		}
		sw.sm.WriteSessionCookie(sw.ctx, sw.ResponseWriter, token, expiry)
	case scs.Destroyed:
		sw.sm.WriteSessionCookie(sw.ctx, sw.ResponseWriter, "", time.Time{})
	}
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commit()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commit()
	return sw.ResponseWriter.Write(b)
}

// Authenticate rejects requests without a logged-in session and
// exposes the session identity as claims on the context.
func Authenticate(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			userID := sm.GetString(ctx, userIDKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			clm := claims.Claims{
				UserID: userID,
				Role:   sm.GetString(ctx, roleKey),
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

func role(sm *scs.SessionManager, role string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			if clm.Role != role {
				return weberr.NotAuthorized(fmt.Errorf("user is not a %s", role))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func Admin(sm *scs.SessionManager) web.Middleware    { return role(sm, claims.RoleAdmin) }
func Employer(sm *scs.SessionManager) web.Middleware { return role(sm, claims.RoleEmployer) }
func Seeker(sm *scs.SessionManager) web.Middleware   { return role(sm, claims.RoleSeeker) }

func login(ctx context.Context, sm *scs.SessionManager, userID string, userRole string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	sm.Put(ctx, userIDKey, userID)
	sm.Put(ctx, roleKey, userRole)
	return nil
}

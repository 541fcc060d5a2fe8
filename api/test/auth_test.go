package test

import (
	"net/http"
	"path"
	"testing"

	"github.com/irsalhamdi/job-board/core/employer"
	"github.com/irsalhamdi/job-board/core/jobseeker"
	"github.com/irsalhamdi/job-board/core/user"
)

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	id := env.signupOK(t, "auth@test.io", "password1", "EMPLOYER")

	var me user.User
	if code := env.do(t, http.MethodGet, "/users/current", nil, &me); code != http.StatusOK {
		t.Fatalf("can't fetch current user: status code %d", code)
	}
	if me.ID != id || me.Role != "EMPLOYER" {
		t.Fatalf("unexpected current user: %+v", me)
	}

	// The same address cannot sign up twice.
	body := map[string]string{"email": "auth@test.io", "password": "password1", "userType": "EMPLOYER"}
	if code := env.do(t, http.MethodPost, "/auth/signup", body, nil); code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: status code %d, want 400", code)
	}

	env.logoutOK(t)
	if code := env.do(t, http.MethodGet, "/users/current", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("current user without a session: status code %d, want 401", code)
	}

	// Wrong credentials get a generic rejection.
	body = map[string]string{"email": "auth@test.io", "password": "wrong-pass"}
	if code := env.do(t, http.MethodPost, "/auth/login", body, nil); code != http.StatusUnauthorized {
		t.Fatalf("login with a wrong password: status code %d, want 401", code)
	}
	body = map[string]string{"email": "nobody@test.io", "password": "password1"}
	if code := env.do(t, http.MethodPost, "/auth/login", body, nil); code != http.StatusUnauthorized {
		t.Fatalf("login with an unknown email: status code %d, want 401", code)
	}

	env.loginOK(t, "auth@test.io", "password1")
}

func TestPasswordChange(t *testing.T) {
	env, err := NewTestEnv(t, "password_change_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	env.signupOK(t, "change@test.io", "password1", "JOBSEEKER")

	body := map[string]string{"oldPassword": "wrong-pass", "newPassword": "password2"}
	if code := env.do(t, http.MethodPost, "/auth/password/change", body, nil); code == http.StatusNoContent {
		t.Fatal("password change accepted a wrong old password")
	}

	body = map[string]string{"oldPassword": "password1", "newPassword": "password2"}
	if code := env.do(t, http.MethodPost, "/auth/password/change", body, nil); code != http.StatusNoContent {
		t.Fatalf("can't change password: status code %d", code)
	}

	env.logoutOK(t)
	env.loginOK(t, "change@test.io", "password2")
}

func TestPasswordReset(t *testing.T) {
	env, err := NewTestEnv(t, "password_reset_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	env.signupOK(t, "reset@test.io", "password1", "JOBSEEKER")
	env.logoutOK(t)

	// The response never reveals whether the address exists.
	body := map[string]string{"email": "nobody@test.io"}
	if code := env.do(t, http.MethodPost, "/auth/password/reset", body, nil); code != http.StatusOK {
		t.Fatalf("reset for an unknown email: status code %d, want 200", code)
	}

	body = map[string]string{"email": "reset@test.io"}
	if code := env.do(t, http.MethodPost, "/auth/password/reset", body, nil); code != http.StatusOK {
		t.Fatalf("can't request a password reset: status code %d", code)
	}

	env.Mail.wait(t, func(m *mailRecorder) bool { return len(m.ResetLinks) == 1 })
	token := path.Base(env.Mail.ResetLinks[0])

	confirm := map[string]string{"token": "not-a-token", "newPassword": "password2"}
	if code := env.do(t, http.MethodPost, "/auth/password/reset/confirm", confirm, nil); code != http.StatusBadRequest {
		t.Fatalf("confirmation with a bogus token: status code %d, want 400", code)
	}

	confirm = map[string]string{"token": token, "newPassword": "password2"}
	if code := env.do(t, http.MethodPost, "/auth/password/reset/confirm", confirm, nil); code != http.StatusNoContent {
		t.Fatalf("can't confirm the password reset: status code %d", code)
	}

	// The token is burned on use.
	if code := env.do(t, http.MethodPost, "/auth/password/reset/confirm", confirm, nil); code != http.StatusBadRequest {
		t.Fatalf("reusing a burned token: status code %d, want 400", code)
	}

	env.loginOK(t, "reset@test.io", "password2")
}

func TestProfiles(t *testing.T) {
	env, err := NewTestEnv(t, "profile_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	employerID := env.signupOK(t, "company@test.io", "password1", "EMPLOYER")

	var emp employer.Employer
	if code := env.do(t, http.MethodGet, "/employers/profile", nil, &emp); code != http.StatusOK {
		t.Fatalf("can't fetch employer profile: status code %d", code)
	}
	if emp.UserID != employerID {
		t.Fatalf("employer profile belongs to %s, want %s", emp.UserID, employerID)
	}

	up := map[string]string{"companyName": "Acme Corp", "website": "https://acme.test"}
	if code := env.do(t, http.MethodPut, "/employers/profile", up, &emp); code != http.StatusOK {
		t.Fatalf("can't update employer profile: status code %d", code)
	}
	if emp.CompanyName != "Acme Corp" || emp.Website != "https://acme.test" {
		t.Fatalf("unexpected employer profile after update: %+v", emp)
	}

	// The seeker endpoints are off limits for an employer.
	if code := env.do(t, http.MethodGet, "/job-seekers/profile", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("employer reading a seeker profile: status code %d, want 401", code)
	}

	env.logoutOK(t)
	env.signupOK(t, "talent@test.io", "password1", "JOBSEEKER")

	var seeker jobseeker.JobSeeker
	up = map[string]string{"firstName": "Dana", "lastName": "Reyes", "skills": "Go, SQL"}
	if code := env.do(t, http.MethodPut, "/job-seekers/profile", up, &seeker); code != http.StatusOK {
		t.Fatalf("can't update seeker profile: status code %d", code)
	}
	if seeker.FirstName != "Dana" || seeker.Skills != "Go, SQL" {
		t.Fatalf("unexpected seeker profile after update: %+v", seeker)
	}
}

package test

import (
	"net/http"
	"testing"

	"github.com/irsalhamdi/job-board/core/application"
	"github.com/irsalhamdi/job-board/core/job"
)

type applicationTest struct {
	*TestEnv
}

func TestApplication(t *testing.T) {
	env, err := NewTestEnv(t, "application_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &applicationTest{env}
	jt := &jobTest{env}

	env.signupOK(t, "hiring@test.io", "password1", "EMPLOYER")
	open := jt.createJobOK(t, "Platform Engineer")
	jt.setStatusOK(t, open.ID, job.Active)
	draft := jt.createJobOK(t, "Unfunded Position")
	env.logoutOK(t)

	env.signupOK(t, "seeker@test.io", "password1", "JOBSEEKER")

	// A seeker cannot post jobs.
	jobBody := map[string]string{
		"title":          "Rogue Posting",
		"description":    "n/a",
		"requirements":   "n/a",
		"employmentType": "FT",
	}
	if code := env.do(t, http.MethodPost, "/jobs", jobBody, nil); code != http.StatusUnauthorized {
		t.Fatalf("seeker creating a job: status code %d, want 401", code)
	}

	app := at.applyOK(t, open.ID)
	if app.Status != application.Pending {
		t.Fatalf("new application status is %s, want %s", app.Status, application.Pending)
	}

	// Both sides get notified in the background.
	env.Mail.wait(t, func(m *mailRecorder) bool {
		return len(m.Confirms) == 1 && len(m.Notifies) == 1
	})

	// Applying twice to the same job is rejected.
	body := map[string]string{"jobId": open.ID, "coverLetter": "Hire me."}
	if code := env.do(t, http.MethodPost, "/applications", body, nil); code != http.StatusBadRequest {
		t.Fatalf("duplicate application: status code %d, want 400", code)
	}

	// A job that is not published cannot be applied to.
	body = map[string]string{"jobId": draft.ID, "coverLetter": "Hire me."}
	if code := env.do(t, http.MethodPost, "/applications", body, nil); code != http.StatusBadRequest {
		t.Fatalf("applying to a draft job: status code %d, want 400", code)
	}

	at.listOwnOK(t, 1)

	// The employer sees the applications of their job, nobody else's.
	env.logoutOK(t)
	env.loginOK(t, "hiring@test.io", "password1")

	// And an employer cannot apply.
	body = map[string]string{"jobId": open.ID, "coverLetter": "Hire me."}
	if code := env.do(t, http.MethodPost, "/applications", body, nil); code != http.StatusUnauthorized {
		t.Fatalf("employer applying to a job: status code %d, want 401", code)
	}

	var apps []application.Application
	if code := env.do(t, http.MethodGet, "/jobs/"+open.ID+"/applications", nil, &apps); code != http.StatusOK {
		t.Fatalf("can't list job applications: status code %d", code)
	}
	if len(apps) != 1 || apps[0].ID != app.ID {
		t.Fatalf("unexpected applications for job %s: %+v", open.ID, apps)
	}

	env.logoutOK(t)
	env.signupOK(t, "rival@test.io", "password1", "EMPLOYER")
	if code := env.do(t, http.MethodGet, "/jobs/"+open.ID+"/applications", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("listing applications of a foreign job: status code %d, want 401", code)
	}
}

func (at *applicationTest) applyOK(t *testing.T, jobID string) application.Application {
	t.Helper()

	body := map[string]string{"jobId": jobID, "coverLetter": "Hire me."}

	var app application.Application
	if code := at.do(t, http.MethodPost, "/applications", body, &app); code != http.StatusCreated {
		t.Fatalf("can't apply to job %s: status code %d", jobID, code)
	}

	return app
}

func (at *applicationTest) listOwnOK(t *testing.T, want int) []application.Application {
	t.Helper()

	var apps []application.Application
	if code := at.do(t, http.MethodGet, "/applications", nil, &apps); code != http.StatusOK {
		t.Fatalf("can't list own applications: status code %d", code)
	}

	if len(apps) != want {
		t.Fatalf("got %d applications, want %d", len(apps), want)
	}

	return apps
}

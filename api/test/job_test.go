package test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/irsalhamdi/job-board/core/job"
)

type jobTest struct {
	*TestEnv
}

func TestJob(t *testing.T) {
	env, err := NewTestEnv(t, "job_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	jt := &jobTest{env}

	env.signupOK(t, "employer@test.io", "password1", "EMPLOYER")

	jb := jt.createJobOK(t, "Go Developer")
	if jb.Status != job.Draft {
		t.Fatalf("new job status is %s, want %s", jb.Status, job.Draft)
	}
	if !strings.HasPrefix(jb.Slug, "go-developer-") {
		t.Fatalf("unexpected slug %q", jb.Slug)
	}
	if jb.Location != "Remote" {
		t.Fatalf("default location is %q, want Remote", jb.Location)
	}

	// Drafts are invisible to the public listing but not to the owner.
	jt.listJobsOK(t, "", 0)
	jt.listOwnJobsOK(t, 1)

	jt.setStatusOK(t, jb.ID, job.Active)
	listed := jt.listJobsOK(t, "", 1)
	if listed[0].ID != jb.ID {
		t.Fatalf("listed job is %s, want %s", listed[0].ID, jb.ID)
	}

	var bySlug job.Job
	if code := env.do(t, http.MethodGet, "/jobs/slug/"+jb.Slug, nil, &bySlug); code != http.StatusOK {
		t.Fatalf("can't fetch job by slug: status code %d", code)
	}
	if bySlug.ID != jb.ID {
		t.Fatalf("job by slug is %s, want %s", bySlug.ID, jb.ID)
	}

	jb2 := jt.createJobOK(t, "Site Reliability Engineer")
	jt.setStatusOK(t, jb2.ID, job.Active)

	found := jt.listJobsOK(t, "?search=reliability", 1)
	if found[0].ID != jb2.ID {
		t.Fatalf("search found job %s, want %s", found[0].ID, jb2.ID)
	}
	jt.listJobsOK(t, "?employment_type=FT", 2)
	jt.listJobsOK(t, "?employment_type=PT", 0)
	jt.listJobsOK(t, "?page=2&page_size=1", 1)

	// Only the owner may edit or delete.
	env.logoutOK(t)
	env.signupOK(t, "intruder@test.io", "password1", "EMPLOYER")

	up := map[string]string{"title": "Hijacked"}
	if code := env.do(t, http.MethodPut, "/jobs/"+jb.ID, up, nil); code != http.StatusUnauthorized {
		t.Fatalf("updating a foreign job: status code %d, want 401", code)
	}
	if code := env.do(t, http.MethodDelete, "/jobs/"+jb.ID, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("deleting a foreign job: status code %d, want 401", code)
	}

	env.logoutOK(t)
	env.loginOK(t, "employer@test.io", "password1")
	if code := env.do(t, http.MethodDelete, "/jobs/"+jb2.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("can't delete own job: status code %d", code)
	}
	if code := env.do(t, http.MethodGet, "/jobs/"+jb2.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("fetching a deleted job: status code %d, want 404", code)
	}
}

func (jt *jobTest) createJobOK(t *testing.T, title string) job.Job {
	t.Helper()

	body := map[string]string{
		"title":          title,
		"description":    "Build and run backend services.",
		"requirements":   "Solid Go and SQL.",
		"salary":         "90k-120k",
		"employmentType": "FT",
	}

	var jb job.Job
	if code := jt.do(t, http.MethodPost, "/jobs", body, &jb); code != http.StatusCreated {
		t.Fatalf("can't create job: status code %d", code)
	}

	return jb
}

func (jt *jobTest) getJobOK(t *testing.T, id string) job.Job {
	t.Helper()

	var jb job.Job
	if code := jt.do(t, http.MethodGet, "/jobs/"+id, nil, &jb); code != http.StatusOK {
		t.Fatalf("can't fetch job %s: status code %d", id, code)
	}

	return jb
}

func (jt *jobTest) setStatusOK(t *testing.T, id string, status job.Status) {
	t.Helper()

	body := map[string]string{"status": string(status)}
	if code := jt.do(t, http.MethodPut, "/jobs/"+id, body, nil); code != http.StatusOK {
		t.Fatalf("can't set job %s status: status code %d", id, code)
	}
}

func (jt *jobTest) listJobsOK(t *testing.T, query string, want int) []job.Job {
	t.Helper()

	var jobs []job.Job
	if code := jt.do(t, http.MethodGet, "/jobs"+query, nil, &jobs); code != http.StatusOK {
		t.Fatalf("can't list jobs: status code %d", code)
	}

	if len(jobs) != want {
		t.Fatalf("got %d jobs, want %d", len(jobs), want)
	}

	return jobs
}

func (jt *jobTest) listOwnJobsOK(t *testing.T, want int) []job.Job {
	t.Helper()

	var jobs []job.Job
	if code := jt.do(t, http.MethodGet, "/jobs/employer", nil, &jobs); code != http.StatusOK {
		t.Fatalf("can't list own jobs: status code %d", code)
	}

	if len(jobs) != want {
		t.Fatalf("got %d own jobs, want %d", len(jobs), want)
	}

	return jobs
}

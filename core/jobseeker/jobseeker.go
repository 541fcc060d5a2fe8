package jobseeker

import "time"

type JobSeeker struct {
	UserID    string    `json:"userId" db:"user_id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	ResumeURL string    `json:"resumeUrl" db:"resume_url"`
	Skills    string    `json:"skills" db:"skills"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type JobSeekerUp struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	ResumeURL *string `json:"resumeUrl" validate:"omitempty,url"`
	Skills    *string `json:"skills"`
}

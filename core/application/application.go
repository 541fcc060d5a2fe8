package application

import "time"

type Status string

const (
	Pending     Status = "P"
	Reviewed    Status = "R"
	Interviewed Status = "I"
	Accepted    Status = "A"
	Declined    Status = "D"
)

type Application struct {
	ID          string    `json:"id" db:"application_id"`
	JobID       string    `json:"jobId" db:"job_id"`
	ApplicantID string    `json:"applicantId" db:"applicant_id"`
	CoverLetter string    `json:"coverLetter" db:"cover_letter"`
	Status      Status    `json:"status" db:"status"`
	AppliedAt   time.Time `json:"appliedAt" db:"applied_at"`
}

type ApplicationNew struct {
	JobID       string `json:"jobId" validate:"required,uuid"`
	CoverLetter string `json:"coverLetter" validate:"required"`
}

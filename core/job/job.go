package job

import "time"

type Status string

const (
	Draft    Status = "DRAFT"
	Active   Status = "ACTIVE"
	Archived Status = "ARCHIVED"
)

type Job struct {
	ID             string    `json:"id" db:"job_id"`
	EmployerID     string    `json:"employerId" db:"employer_id"`
	Title          string    `json:"title" db:"title"`
	Slug           string    `json:"slug" db:"slug"`
	Description    string    `json:"description" db:"description"`
	Requirements   string    `json:"requirements" db:"requirements"`
	Salary         string    `json:"salary" db:"salary"`
	Location       string    `json:"location" db:"location"`
	EmploymentType string    `json:"employmentType" db:"employment_type"`
	Status         Status    `json:"status" db:"status"`
	ApplicationURL string    `json:"applicationUrl" db:"application_url"`
	PostedAt       time.Time `json:"postedAt" db:"posted_at"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type JobNew struct {
	Title          string `json:"title" validate:"required,lte=100"`
	Description    string `json:"description" validate:"required"`
	Requirements   string `json:"requirements" validate:"required"`
	Salary         string `json:"salary"`
	Location       string `json:"location"`
	EmploymentType string `json:"employmentType" validate:"required,oneof=FT PT CT IN"`
	ApplicationURL string `json:"applicationUrl" validate:"omitempty,url"`
}

type JobUp struct {
	Title          *string `json:"title" validate:"omitempty,lte=100"`
	Description    *string `json:"description"`
	Requirements   *string `json:"requirements"`
	Salary         *string `json:"salary"`
	Location       *string `json:"location"`
	EmploymentType *string `json:"employmentType" validate:"omitempty,oneof=FT PT CT IN"`
	Status         *Status `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	ApplicationURL *string `json:"applicationUrl" validate:"omitempty,url"`
}

// Filter narrows the public listing.
type Filter struct {
	Search         string
	EmploymentType string
	Page           int
	PageSize       int
}

package employer

import "time"

type Employer struct {
	UserID      string    `json:"userId" db:"user_id"`
	CompanyName string    `json:"companyName" db:"company_name"`
	Description string    `json:"description" db:"description"`
	Website     string    `json:"website" db:"website"`
	LogoURL     string    `json:"logoUrl" db:"logo_url"`
	Location    string    `json:"location" db:"location"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type EmployerUp struct {
	CompanyName *string `json:"companyName"`
	Description *string `json:"description"`
	Website     *string `json:"website" validate:"omitempty,url"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,url"`
	Location    *string `json:"location"`
}

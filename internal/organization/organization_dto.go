package organization

import "encoding/json"

type CreateOrganizationRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Slug         string          `json:"slug" binding:"max=200"`
	Description  string          `json:"description"`
	PrimaryColor string          `json:"primary_color" binding:"omitempty,hexcolor"`
	Plan         Plan            `json:"plan"`
	MaxEmployees *int            `json:"max_employees" binding:"omitempty,min=1"`
	Email        string          `json:"email" binding:"omitempty,email"`
	Phone        string          `json:"phone" binding:"max=20"`
	Address      string          `json:"address"`
	Website      string          `json:"website" binding:"omitempty,url"`
	Timezone     string          `json:"timezone" binding:"max=50"`
	DateFormat   string          `json:"date_format" binding:"max=20"`
	Currency     string          `json:"currency" binding:"omitempty,len=3"`
	Settings     json.RawMessage `json:"settings"`
}

type UpdateOrganizationRequest struct {
	Name         *string         `json:"name" binding:"omitempty,max=200"`
	Slug         *string         `json:"slug" binding:"omitempty,max=200"`
	Description  *string         `json:"description"`
	PrimaryColor *string         `json:"primary_color" binding:"omitempty,hexcolor"`
	Plan         *Plan           `json:"plan"`
	MaxEmployees *int            `json:"max_employees" binding:"omitempty,min=1"`
	Email        *string         `json:"email" binding:"omitempty,email"`
	Phone        *string         `json:"phone" binding:"omitempty,max=20"`
	Address      *string         `json:"address"`
	Website      *string         `json:"website" binding:"omitempty,url"`
	Timezone     *string         `json:"timezone" binding:"omitempty,max=50"`
	DateFormat   *string         `json:"date_format" binding:"omitempty,max=20"`
	Currency     *string         `json:"currency" binding:"omitempty,len=3"`
	Settings     json.RawMessage `json:"settings"`
}

type ListOrganizationsRequest struct {
	Search string `form:"search"`
}

type OrganizationResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	PrimaryColor string          `json:"primary_color"`
	Plan         string          `json:"plan"`
	MaxEmployees int             `json:"max_employees"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Website      string          `json:"website"`
	Timezone     string          `json:"timezone"`
	DateFormat   string          `json:"date_format"`
	Currency     string          `json:"currency"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type StatsResponse struct {
	TotalEmployees   int64 `json:"total_employees"`
	TotalDepartments int64 `json:"total_departments"`
	PendingLeaves    int64 `json:"pending_leaves"`
	ActiveMembers    int64 `json:"active_members"`
}

type ActivityChartResponse struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

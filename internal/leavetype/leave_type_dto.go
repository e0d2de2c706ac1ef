package leavetype

type CreateLeaveTypeRequest struct {
	OrganizationID   string `json:"organization" binding:"required,uuid"`
	Name             string `json:"name" binding:"required,max=100"`
	Code             string `json:"code" binding:"required,max=20"`
	Description      string `json:"description"`
	IsPaid           *bool  `json:"is_paid"`
	RequiresApproval *bool  `json:"requires_approval"`
	MaxDaysPerYear   *int   `json:"max_days_per_year" binding:"omitempty,min=1"`
	Color            string `json:"color" binding:"omitempty,hexcolor"`
}

type UpdateLeaveTypeRequest struct {
	Name             *string `json:"name" binding:"omitempty,max=100"`
	Code             *string `json:"code" binding:"omitempty,max=20"`
	Description      *string `json:"description"`
	IsPaid           *bool   `json:"is_paid"`
	RequiresApproval *bool   `json:"requires_approval"`
	MaxDaysPerYear   *int    `json:"max_days_per_year" binding:"omitempty,min=0"`
	Color            *string `json:"color" binding:"omitempty,hexcolor"`
	IsActive         *bool   `json:"is_active"`
}

type ListLeaveTypesRequest struct {
	IsActive *bool `form:"is_active"`
}

type LeaveTypeResponse struct {
	ID               string `json:"id"`
	OrganizationID   string `json:"organization"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	Description      string `json:"description"`
	IsPaid           bool   `json:"is_paid"`
	RequiresApproval bool   `json:"requires_approval"`
	MaxDaysPerYear   *int   `json:"max_days_per_year"`
	Color            string `json:"color"`
	IsActive         bool   `json:"is_active"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

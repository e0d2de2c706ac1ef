package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	OrganizationID  string           `json:"organization" binding:"required,uuid"`
	UserID          *string          `json:"user" binding:"omitempty,uuid"`
	DepartmentID    *string          `json:"department" binding:"omitempty,uuid"`
	ManagerID       *string          `json:"manager" binding:"omitempty,uuid"`
	EmployeeID      string           `json:"employee_id" binding:"max=50"`
	FirstName       string           `json:"first_name" binding:"required,max=120"`
	LastName        string           `json:"last_name" binding:"required,max=120"`
	Email           string           `json:"email" binding:"required,email"`
	Phone           string           `json:"phone" binding:"max=20"`
	DateOfBirth     string           `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender          string           `json:"gender" binding:"omitempty,oneof=M F O"`
	AddressLine1    string           `json:"address_line1"`
	AddressLine2    string           `json:"address_line2"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	PostalCode      string           `json:"postal_code"`
	Country         string           `json:"country"`
	Position        string           `json:"position" binding:"required,max=120"`
	EmploymentType  string           `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract intern"`
	HireDate        string           `json:"hire_date" binding:"required,datetime=2006-01-02"`
	Salary          *decimal.Decimal `json:"salary"`
	SalaryCurrency  string           `json:"salary_currency" binding:"omitempty,len=3"`
	AnnualLeaveDays *int             `json:"annual_leave_days" binding:"omitempty,min=0"`
	SickLeaveDays   *int             `json:"sick_leave_days" binding:"omitempty,min=0"`
}

// UpdateEmployeeRequest is a partial update. An empty string for department
// or manager clears the reference.
type UpdateEmployeeRequest struct {
	DepartmentID    *string          `json:"department"`
	ManagerID       *string          `json:"manager"`
	FirstName       *string          `json:"first_name" binding:"omitempty,max=120"`
	LastName        *string          `json:"last_name" binding:"omitempty,max=120"`
	Email           *string          `json:"email" binding:"omitempty,email"`
	Phone           *string          `json:"phone" binding:"omitempty,max=20"`
	Position        *string          `json:"position" binding:"omitempty,max=120"`
	EmploymentType  *string          `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract intern"`
	TerminationDate *string          `json:"termination_date" binding:"omitempty,datetime=2006-01-02"`
	Salary          *decimal.Decimal `json:"salary"`
	AnnualLeaveDays *int             `json:"annual_leave_days" binding:"omitempty,min=0"`
	SickLeaveDays   *int             `json:"sick_leave_days" binding:"omitempty,min=0"`
	Status          *string          `json:"status" binding:"omitempty,oneof=active on_leave suspended terminated"`
	IsActive        *bool            `json:"is_active"`
}

type ListEmployeesRequest struct {
	Department     string `form:"department"`
	Status         string `form:"status"`
	EmploymentType string `form:"employment_type"`
	IsActive       *bool  `form:"is_active"`
	Search         string `form:"search"`
}

type EmployeeResponse struct {
	ID              string           `json:"id"`
	OrganizationID  string           `json:"organization"`
	UserID          *string          `json:"user"`
	DepartmentID    *string          `json:"department"`
	ManagerID       *string          `json:"manager"`
	EmployeeID      string           `json:"employee_id"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	DateOfBirth     *string          `json:"date_of_birth"`
	Gender          string           `json:"gender"`
	AddressLine1    string           `json:"address_line1"`
	AddressLine2    string           `json:"address_line2"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	PostalCode      string           `json:"postal_code"`
	Country         string           `json:"country"`
	Position        string           `json:"position"`
	EmploymentType  string           `json:"employment_type"`
	HireDate        string           `json:"hire_date"`
	TerminationDate *string          `json:"termination_date"`
	Salary          *decimal.Decimal `json:"salary"`
	SalaryCurrency  string           `json:"salary_currency"`
	AnnualLeaveDays int              `json:"annual_leave_days"`
	SickLeaveDays   int              `json:"sick_leave_days"`
	Status          string           `json:"status"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

// EmployeeOption is the compact row used by pickers.
type EmployeeOption struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Position   string `json:"position"`
}

type LeaveBalanceResponse struct {
	AnnualLeaveTotal     int   `json:"annual_leave_total"`
	AnnualLeaveUsed      int64 `json:"annual_leave_used"`
	AnnualLeaveRemaining int64 `json:"annual_leave_remaining"`
	SickLeaveTotal       int   `json:"sick_leave_total"`
}

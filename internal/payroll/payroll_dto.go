package payroll

type GeneratePayrollRequest struct {
	OrganizationID string `json:"organization" binding:"omitempty,uuid"`
	Month          int    `json:"month" binding:"required,min=1,max=12"`
	Year           int    `json:"year" binding:"required,min=2000,max=2100"`
}

type GeneratePayrollResponse struct {
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

type ListPayrollsRequest struct {
	Employee string `form:"employee" binding:"omitempty,uuid"`
	Month    int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year     int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Status   string `form:"status" binding:"omitempty,oneof=draft processed paid"`
}

type EmployeeDetail struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	EmployeeID string `json:"employee_id"`
}

type PayrollResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization"`
	EmployeeID     string          `json:"employee"`
	EmployeeDetail *EmployeeDetail `json:"employee_detail,omitempty"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	BaseSalary     string          `json:"base_salary"`
	Bonuses        string          `json:"bonuses"`
	Deductions     string          `json:"deductions"`
	NetSalary      string          `json:"net_salary"`
	Status         string          `json:"status"`
	PaymentDate    *string         `json:"payment_date"`
	Notes          string          `json:"notes"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

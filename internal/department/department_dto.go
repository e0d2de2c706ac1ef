package department

type CreateDepartmentRequest struct {
	OrganizationID string  `json:"organization" binding:"required,uuid"`
	Name           string  `json:"name" binding:"required,max=255"`
	Code           string  `json:"code" binding:"max=50"`
	Description    string  `json:"description"`
	ParentID       *string `json:"parent" binding:"omitempty,uuid"`
	ManagerID      *string `json:"manager" binding:"omitempty,uuid"`
}

// UpdateDepartmentRequest is a partial update. An empty string for parent or
// manager clears the reference.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Code        *string `json:"code" binding:"omitempty,max=50"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent"`
	ManagerID   *string `json:"manager"`
	IsActive    *bool   `json:"is_active"`
}

type ListDepartmentsRequest struct {
	Parent   string `form:"parent"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
}

type DepartmentResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Description    string  `json:"description"`
	ParentID       *string `json:"parent"`
	ManagerID      *string `json:"manager"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type DepartmentEmployeeResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Status     string `json:"status"`
}

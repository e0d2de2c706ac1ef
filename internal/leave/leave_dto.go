package leave

const (
	RoleMyRequests = "my_requests"
	RoleToApprove  = "to_approve"
)

// CreateLeaveRequest carries no employee or organization reference: the
// request is always filed for the caller's own employee profile in the
// organization that owns the leave type.
type CreateLeaveRequest struct {
	LeaveTypeID string `json:"leave_type" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" binding:"max=2000"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

type ListLeavesRequest struct {
	Role      string `form:"role" binding:"omitempty,oneof=my_requests to_approve"`
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	Employee  string `form:"employee" binding:"omitempty,uuid"`
	LeaveType string `form:"leave_type" binding:"omitempty,uuid"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	OrganizationID  string  `json:"organization"`
	EmployeeID      string  `json:"employee"`
	EmployeeName    string  `json:"employee_name"`
	LeaveTypeID     string  `json:"leave_type"`
	LeaveTypeName   string  `json:"leave_type_name"`
	LeaveTypeColor  string  `json:"leave_type_color,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovedAt      *string `json:"approved_at"`
	RejectionReason string  `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

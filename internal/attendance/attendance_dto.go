package attendance

type CheckRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

type MarkAbsentRequest struct {
	EmployeeID string `json:"employee" binding:"required,uuid"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	Notes      string `json:"notes" binding:"max=2000"`
}

type ListAttendanceRequest struct {
	Employee string `form:"employee" binding:"omitempty,uuid"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Status   string `form:"status" binding:"omitempty,oneof=present absent late half_day"`
}

type EmployeeDetail struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	EmployeeID string `json:"employee_id"`
}

type AttendanceResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization"`
	EmployeeID     string          `json:"employee"`
	EmployeeDetail *EmployeeDetail `json:"employee_detail,omitempty"`
	Date           string          `json:"date"`
	CheckIn        *string         `json:"check_in"`
	CheckOut       *string         `json:"check_out"`
	Status         string          `json:"status"`
	HoursWorked    string          `json:"hours_worked"`
	Notes          string          `json:"notes"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// CurrentStatusResponse describes today's record of the caller. Attendance
// is nil when nothing was recorded yet.
type CurrentStatusResponse struct {
	Date        string              `json:"date"`
	Status      string              `json:"status"`
	IsClockedIn bool                `json:"is_clocked_in"`
	Attendance  *AttendanceResponse `json:"attendance"`
}

package document

import "encoding/json"

type CreateDocumentRequest struct {
	EmployeeID  string          `json:"employee" binding:"required,uuid"`
	Title       string          `json:"title" binding:"required,max=200"`
	Category    string          `json:"category" binding:"required,oneof=contract id certificate payslip other"`
	FileURL     string          `json:"file" binding:"required,url,max=500"`
	FileSize    int64           `json:"file_size" binding:"omitempty,min=0"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
}

type UpdateDocumentRequest struct {
	Title       *string         `json:"title" binding:"omitempty,max=200"`
	Category    *string         `json:"category" binding:"omitempty,oneof=contract id certificate payslip other"`
	FileURL     *string         `json:"file" binding:"omitempty,url,max=500"`
	FileSize    *int64          `json:"file_size" binding:"omitempty,min=0"`
	Description *string         `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
}

type ListDocumentsRequest struct {
	Employee string `form:"employee" binding:"omitempty,uuid"`
	Category string `form:"category" binding:"omitempty,oneof=contract id certificate payslip other"`
	Search   string `form:"search"`
}

type EmployeeDetail struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type DocumentResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization"`
	EmployeeID     string          `json:"employee"`
	EmployeeDetail *EmployeeDetail `json:"employee_detail,omitempty"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	FileURL        string          `json:"file"`
	FileSize       int64           `json:"file_size"`
	Description    string          `json:"description"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	UploadedBy     *string         `json:"uploaded_by"`
	UploadedAt     string          `json:"uploaded_at"`
}

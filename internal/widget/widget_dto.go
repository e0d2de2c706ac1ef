package widget

import "time"

type CreateEventRequest struct {
	OrganizationID string     `json:"organization" binding:"omitempty,uuid"`
	Title          string     `json:"title" binding:"required,max=200"`
	Description    string     `json:"description"`
	StartTime      time.Time  `json:"start_time" binding:"required"`
	EndTime        *time.Time `json:"end_time"`
	Link           string     `json:"link" binding:"omitempty,url,max=500"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Link        *string    `json:"link" binding:"omitempty,url,max=500"`
}

type EventResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	StartTime      string  `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Link           string  `json:"link"`
	CreatedAt      string  `json:"created_at"`
}

type CreateProjectRequest struct {
	OrganizationID string `json:"organization" binding:"omitempty,uuid"`
	Name           string `json:"name" binding:"required,max=200"`
	Description    string `json:"description"`
	DueDate        string `json:"due_date" binding:"required,datetime=2006-01-02"`
	Status         string `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	IconEmoji      string `json:"icon_emoji" binding:"omitempty,max=10"`
	Color          string `json:"color" binding:"omitempty,oneof=blue green orange purple pink"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status      *string `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	IconEmoji   *string `json:"icon_emoji" binding:"omitempty,max=10"`
	Color       *string `json:"color" binding:"omitempty,oneof=blue green orange purple pink"`
}

type ListProjectsRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=todo in_progress done"`
}

type ProjectResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	IconEmoji      string `json:"icon_emoji"`
	Color          string `json:"color"`
	CreatedAt      string `json:"created_at"`
}

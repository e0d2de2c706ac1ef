package notification

type NotificationResponse struct {
	ID             string  `json:"id"`
	OrganizationID *string `json:"organization"`
	SenderID       *string `json:"sender"`
	Kind           string  `json:"notification_type"`
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	Link           string  `json:"link"`
	IsRead         bool    `json:"is_read"`
	CreatedAt      string  `json:"created_at"`
}

type ListNotificationsRequest struct {
	Unread bool `form:"unread"`
}

type ReadAllResponse struct {
	Updated int64 `json:"updated"`
}

package member

type AddMemberRequest struct {
	OrganizationID string `json:"organization" binding:"required,uuid"`
	Email          string `json:"email" binding:"required,email"`
	Role           string `json:"role" binding:"required"`
}

type UpdateMemberRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type ListMembersRequest struct {
	Role     string `form:"role"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type MemberResponse struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization"`
	User           UserSummary `json:"user_detail"`
	Role           string      `json:"role"`
	IsActive       bool        `json:"is_active"`
	JoinedAt       string      `json:"joined_at"`
}

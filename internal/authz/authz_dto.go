package authz

type CapabilitiesResponse struct {
	OrganizationID string       `json:"organization"`
	Role           string       `json:"role"`
	IsSuperuser    bool         `json:"is_superuser"`
	Capabilities   []Capability `json:"capabilities"`
}

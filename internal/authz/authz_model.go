package authz

import (
	"go-hrms/internal/tenant"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Capability string

const (
	CapabilityMember         Capability = "is_member"
	CapabilityManagerOrAdmin Capability = "is_manager_or_admin"
	CapabilityAdmin          Capability = "is_admin"
	CapabilityOwner          Capability = "is_owner"
)

// AllCapabilities is ordered from weakest to strongest.
var AllCapabilities = []Capability{
	CapabilityMember,
	CapabilityManagerOrAdmin,
	CapabilityAdmin,
	CapabilityOwner,
}

// A role inherits every capability of the roles below it:
// owner > admin > manager > employee.
const modelText = `
[request_definition]
r = role, cap

[policy_definition]
p = role, cap

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.role, p.role) && r.cap == p.cap
`

var rolePolicies = [][]string{
	{string(tenant.RoleEmployee), string(CapabilityMember)},
	{string(tenant.RoleManager), string(CapabilityManagerOrAdmin)},
	{string(tenant.RoleAdmin), string(CapabilityAdmin)},
	{string(tenant.RoleOwner), string(CapabilityOwner)},
}

var roleHierarchy = [][]string{
	{string(tenant.RoleOwner), string(tenant.RoleAdmin)},
	{string(tenant.RoleAdmin), string(tenant.RoleManager)},
	{string(tenant.RoleManager), string(tenant.RoleEmployee)},
}

// NewEnforcer builds the in-memory casbin enforcer for role capabilities.
// Policies are static; nothing mutates the enforcer after construction.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(rolePolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(roleHierarchy); err != nil {
		return nil, err
	}

	return e, nil
}

package tenant

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility is the set of organizations a principal may read, with the role
// held in each. All is set for superusers, who bypass the filter.
type Visibility struct {
	All   bool
	Roles map[uuid.UUID]Role
}

func NewVisibility(memberships []Membership) Visibility {
	roles := make(map[uuid.UUID]Role, len(memberships))
	for _, m := range memberships {
		if m.IsActive {
			roles[m.OrganizationID] = m.Role
		}
	}
	return Visibility{Roles: roles}
}

// Superuser returns a visibility that sees every organization.
func Superuser() Visibility {
	return Visibility{All: true}
}

// Includes reports whether entities of organizationID are visible.
func (v Visibility) Includes(organizationID uuid.UUID) bool {
	if v.All {
		return true
	}
	_, ok := v.Roles[organizationID]
	return ok
}

// RoleIn returns the role held in organizationID. Superusers act as owner.
func (v Visibility) RoleIn(organizationID uuid.UUID) (Role, bool) {
	if v.All {
		return RoleOwner, true
	}
	role, ok := v.Roles[organizationID]
	return role, ok
}

// Narrow restricts v to a single organization. The boolean is false when the
// organization is not visible at all.
func (v Visibility) Narrow(organizationID uuid.UUID) (Visibility, bool) {
	role, ok := v.RoleIn(organizationID)
	if !ok {
		return Visibility{}, false
	}
	return Visibility{Roles: map[uuid.UUID]Role{organizationID: role}}, true
}

// OrganizationIDs returns the visible organizations in a stable order. It is
// meaningless when All is set.
func (v Visibility) OrganizationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(v.Roles))
	for id := range v.Roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Scope filters a query on tenant-owned rows by organization_id.
func Scope(v Visibility) func(db *gorm.DB) *gorm.DB {
	return ScopeColumn("organization_id", v)
}

// ScopeColumn is Scope for queries where the organization column must be
// qualified, e.g. "leave_requests.organization_id" in joins.
func ScopeColumn(column string, v Visibility) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.All {
			return db
		}
		ids := v.OrganizationIDs()
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(column+" IN ?", ids)
	}
}

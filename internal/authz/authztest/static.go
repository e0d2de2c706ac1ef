// Package authztest provides an Authorizer backed by in-memory memberships
// for service and handler tests.
package authztest

import (
	"context"
	"sync"

	"go-hrms/internal/authz"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory is an in-memory tenant.Directory.
type Directory struct {
	mu          sync.RWMutex
	memberships map[uuid.UUID]map[uuid.UUID]tenant.Role // user -> org -> role
}

func NewDirectory() *Directory {
	return &Directory{memberships: map[uuid.UUID]map[uuid.UUID]tenant.Role{}}
}

// Grant gives userID role in organizationID and returns the directory.
func (d *Directory) Grant(userID, organizationID uuid.UUID, role tenant.Role) *Directory {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.memberships[userID] == nil {
		d.memberships[userID] = map[uuid.UUID]tenant.Role{}
	}
	d.memberships[userID][organizationID] = role
	return d
}

func (d *Directory) ActiveMembership(_ context.Context, userID, organizationID uuid.UUID) (*tenant.Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.memberships[userID][organizationID]
	if !ok {
		return nil, tenant.ErrNoMembership
	}
	return &tenant.Membership{UserID: userID, OrganizationID: organizationID, Role: role, IsActive: true}, nil
}

func (d *Directory) ActiveMemberships(_ context.Context, userID uuid.UUID) ([]tenant.Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]tenant.Membership, 0, len(d.memberships[userID]))
	for orgID, role := range d.memberships[userID] {
		out = append(out, tenant.Membership{UserID: userID, OrganizationID: orgID, Role: role, IsActive: true})
	}
	return out, nil
}

// NewEngine returns a real casbin-backed engine over dir.
func NewEngine(dir *Directory) *authz.Engine {
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		panic(err)
	}
	return authz.NewEngine(dir, enforcer, zap.NewNop())
}

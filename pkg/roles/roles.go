// Package roles keeps the per-bridge role sets: admins, pausers, backends and
// bridge-role holders. Membership changes always require admin privilege;
// there is deliberately no self-renounce operation, so the at-least-one-admin
// invariant is enforced in exactly one place.
package roles

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Role names a privilege set.
type Role string

const (
	// RoleAdmin may change configuration and role membership.
	RoleAdmin Role = "admin"
	// RolePauser may pause and unpause the bridge.
	RolePauser Role = "pauser"
	// RoleBackend may settle fast withdrawals.
	RoleBackend Role = "backend"
	// RoleBridge may draw on the liquidity pool.
	RoleBridge Role = "bridge"
)

var (
	// ErrNotAdmin is returned when a gated change is attempted by a non-admin.
	ErrNotAdmin = errors.New("caller is not an admin")
	// ErrNotPauser is returned when pause is attempted by a caller that is
	// neither pauser nor admin.
	ErrNotPauser = errors.New("caller is not a pauser or admin")
	// ErrAlreadyGranted is returned when granting a role the member holds.
	ErrAlreadyGranted = errors.New("role already granted")
	// ErrNotGranted is returned when revoking a role the member lacks.
	ErrNotGranted = errors.New("role not granted")
	// ErrLastAdmin is returned when revoking the only remaining admin.
	ErrLastAdmin = errors.New("cannot remove the last admin")
)

// Registry is a thread-safe role membership table.
type Registry struct {
	mu      sync.RWMutex
	members map[Role]map[common.Address]struct{}
}

// NewRegistry creates a registry seeded with one admin.
func NewRegistry(initialAdmin common.Address) *Registry {
	r := &Registry{members: make(map[Role]map[common.Address]struct{})}
	r.members[RoleAdmin] = map[common.Address]struct{}{initialAdmin: {}}
	return r
}

// Has reports whether addr holds role.
func (r *Registry) Has(role Role, addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[role][addr]
	return ok
}

// Grant adds addr to role. Admin-gated; granting an already-held role fails.
func (r *Registry) Grant(caller common.Address, role Role, addr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[RoleAdmin][caller]; !ok {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller.Hex())
	}
	set, ok := r.members[role]
	if !ok {
		set = make(map[common.Address]struct{})
		r.members[role] = set
	}
	if _, exists := set[addr]; exists {
		return fmt.Errorf("%w: %s already holds %s", ErrAlreadyGranted, addr.Hex(), role)
	}
	set[addr] = struct{}{}
	return nil
}

// Revoke removes addr from role. Admin-gated; revoking an absent role fails,
// and the last admin can never be removed.
func (r *Registry) Revoke(caller common.Address, role Role, addr common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[RoleAdmin][caller]; !ok {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller.Hex())
	}
	set := r.members[role]
	if _, exists := set[addr]; !exists {
		return fmt.Errorf("%w: %s does not hold %s", ErrNotGranted, addr.Hex(), role)
	}
	if role == RoleAdmin && len(set) == 1 {
		return ErrLastAdmin
	}
	delete(set, addr)
	return nil
}

// RequireAdmin fails unless addr is an admin.
func (r *Registry) RequireAdmin(addr common.Address) error {
	if !r.Has(RoleAdmin, addr) {
		return fmt.Errorf("%w: %s", ErrNotAdmin, addr.Hex())
	}
	return nil
}

// RequirePauserOrAdmin fails unless addr is a pauser or an admin.
func (r *Registry) RequirePauserOrAdmin(addr common.Address) error {
	if !r.Has(RolePauser, addr) && !r.Has(RoleAdmin, addr) {
		return fmt.Errorf("%w: %s", ErrNotPauser, addr.Hex())
	}
	return nil
}

// MembersOf returns a snapshot of the members holding role.
func (r *Registry) MembersOf(role Role) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.members[role]))
	for addr := range r.members[role] {
		out = append(out, addr)
	}
	return out
}

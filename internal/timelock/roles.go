package timelock

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// RoleTable maps roles to the accounts holding them. Admin administers every role.
type RoleTable struct {
	members map[models.Role]map[common.Address]bool
}

// NewRoleTable returns an empty table
func NewRoleTable() *RoleTable {
	return &RoleTable{members: make(map[models.Role]map[common.Address]bool)}
}

// Has reports whether account holds role
func (t *RoleTable) Has(role models.Role, account common.Address) bool {
	return t.members[role][account]
}

// AdminOf returns the role allowed to grant and revoke role
func (t *RoleTable) AdminOf(models.Role) models.Role {
	return models.RoleAdmin
}

// Members returns the holders of role, sorted
func (t *RoleTable) Members(role models.Role) []common.Address {
	out := lo.Keys(t.members[role])
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// grant returns true if the account did not hold the role before
func (t *RoleTable) grant(role models.Role, account common.Address) bool {
	if t.Has(role, account) {
		return false
	}
	if t.members[role] == nil {
		t.members[role] = make(map[common.Address]bool)
	}
	t.members[role][account] = true
	return true
}

// revoke returns true if the account held the role
func (t *RoleTable) revoke(role models.Role, account common.Address) bool {
	if !t.Has(role, account) {
		return false
	}
	delete(t.members[role], account)
	if len(t.members[role]) == 0 {
		delete(t.members, role)
	}
	return true
}

// Export returns the holders of every non-empty role
func (t *RoleTable) Export() map[models.Role][]common.Address {
	out := make(map[models.Role][]common.Address, len(t.members))
	for role := range t.members {
		out[role] = t.Members(role)
	}
	return out
}

// Restore replaces the table contents
func (t *RoleTable) Restore(members map[models.Role][]common.Address) {
	t.members = make(map[models.Role]map[common.Address]bool, len(members))
	for role, accounts := range members {
		for _, a := range accounts {
			t.grant(role, a)
		}
	}
}

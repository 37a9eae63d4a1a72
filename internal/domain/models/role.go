package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role is a capability tag in the timelock role table
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProposer  Role = "proposer"
	RoleExecutor  Role = "executor"
	RoleCanceller Role = "canceller"
)

// AllRoles lists every role known to the timelock
var AllRoles = []Role{RoleAdmin, RoleProposer, RoleExecutor, RoleCanceller}

// AnyAccount is the wildcard identity. Granting it the executor role opens execution to everyone.
var AnyAccount = common.Address{}

// ID returns the bytes32 identifier used in calldata. Admin is the zero hash.
func (r Role) ID() common.Hash {
	switch r {
	case RoleAdmin:
		return common.Hash{}
	case RoleProposer:
		return crypto.Keccak256Hash([]byte("PROPOSER_ROLE"))
	case RoleExecutor:
		return crypto.Keccak256Hash([]byte("EXECUTOR_ROLE"))
	case RoleCanceller:
		return crypto.Keccak256Hash([]byte("CANCELLER_ROLE"))
	}
	return crypto.Keccak256Hash([]byte(strings.ToUpper(string(r)) + "_ROLE"))
}

// RoleFromID resolves a bytes32 role identifier
func RoleFromID(id common.Hash) (Role, bool) {
	for _, r := range AllRoles {
		if r.ID() == id {
			return r, true
		}
	}
	return "", false
}

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_role"))
	for _, r := range AllRoles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

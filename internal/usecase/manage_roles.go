package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// RoleAction names a role command
type RoleAction string

const (
	RoleGrant    RoleAction = "grant"
	RoleRevoke   RoleAction = "revoke"
	RoleRenounce RoleAction = "renounce"
)

// ListRolesResult contains the role table
type ListRolesResult struct {
	Timelock  common.Address
	Governor  common.Address
	Members   governance.RoleMembers
	Anyone    bool // executor role is open to every account
	SelfAdmin bool // the timelock administers its own roles
}

// ListRoles reports the timelock role table
type ListRoles struct {
	workspace *Workspace
}

// NewListRoles creates a new ListRoles use case
func NewListRoles(workspace *Workspace) *ListRoles {
	return &ListRoles{workspace: workspace}
}

// Run executes the list roles use case
func (uc *ListRoles) Run(ctx context.Context) (*ListRolesResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	addrs := sys.Addresses()
	return &ListRolesResult{
		Timelock:  addrs.Timelock,
		Governor:  addrs.Governor,
		Members:   sys.Roles(),
		Anyone:    sys.HasRole(models.RoleExecutor, models.AnyAccount),
		SelfAdmin: sys.HasRole(models.RoleAdmin, addrs.Timelock),
	}, nil
}

// ManageRoleParams contains parameters for a role change
type ManageRoleParams struct {
	Action  RoleAction
	From    string
	Role    models.Role
	Account common.Address // ignored for renounce
	Yes     bool
}

// ManageRoleResult reports the role holders after the change
type ManageRoleResult struct {
	Action  RoleAction
	Role    models.Role
	Account common.Address
	Members []common.Address
	Aborted bool
}

// ManageRole grants, revokes or renounces timelock roles directly. Once the
// deployer has renounced admin these calls only succeed through governance.
type ManageRole struct {
	workspace *Workspace
	accounts  Accounts
	confirmer Confirmer
	cfg       *config.RuntimeConfig
}

// NewManageRole creates a new ManageRole use case
func NewManageRole(workspace *Workspace, accounts Accounts, confirmer Confirmer, cfg *config.RuntimeConfig) *ManageRole {
	return &ManageRole{workspace: workspace, accounts: accounts, confirmer: confirmer, cfg: cfg}
}

// Run executes the role change
func (uc *ManageRole) Run(ctx context.Context, params ManageRoleParams) (*ManageRoleResult, error) {
	caller, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}
	account := params.Account
	if params.Action == RoleRenounce {
		account = caller
		if !params.Yes && !uc.cfg.NonInteractive && uc.confirmer != nil {
			ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Renounce %s role for %s", params.Role, caller.Hex()))
			if err != nil {
				return nil, err
			}
			if !ok {
				return &ManageRoleResult{Action: params.Action, Role: params.Role, Account: caller, Aborted: true}, nil
			}
		}
	}

	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		switch params.Action {
		case RoleGrant:
			return sys.GrantRole(ctx, caller, params.Role, account)
		case RoleRevoke:
			return sys.RevokeRole(ctx, caller, params.Role, account)
		case RoleRenounce:
			return sys.RenounceRole(ctx, caller, params.Role)
		default:
			return fmt.Errorf("unknown role action: %s", params.Action)
		}
	})
	if err != nil {
		return nil, err
	}
	return &ManageRoleResult{
		Action:  params.Action,
		Role:    params.Role,
		Account: account,
		Members: sys.Roles()[params.Role],
	}, nil
}

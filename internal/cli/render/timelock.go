package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// TimelockRenderer renders the timelock queue and its role table
type TimelockRenderer struct {
	out io.Writer
}

// NewTimelockRenderer creates a new timelock renderer
func NewTimelockRenderer(out io.Writer) *TimelockRenderer {
	return &TimelockRenderer{out: out}
}

// RenderTimelock renders the timelock summary and its operations
func (r *TimelockRenderer) RenderTimelock(result *usecase.ShowTimelockResult) error {
	section(r.out, "Timelock "+result.Timelock.Address.Hex())
	field(r.out, "Min delay", fmt.Sprintf("%ds", result.Timelock.MinDelay))
	field(r.out, "Grace period", fmt.Sprintf("%ds", result.Timelock.GracePeriod))
	field(r.out, "Balance", result.Timelock.Balance)
	field(r.out, "Now", result.Clock.Timestamp)
	fmt.Fprintln(r.out)

	if len(result.Operations) == 0 {
		fmt.Fprintln(r.out, "No operations found")
		return nil
	}

	if len(result.Operations) == 1 {
		op := result.Operations[0]
		section(r.out, "Operation "+op.ID.Hex())
		field(r.out, "State", operationTitle(op.State))
		field(r.out, "Scheduled at", op.ScheduledAt)
		field(r.out, "Ready at", op.ReadyAt)
		field(r.out, "Delay", fmt.Sprintf("%ds", op.Delay))
		field(r.out, "Predecessor", op.Predecessor.Hex())
		field(r.out, "Salt", op.Salt.Hex())
		fmt.Fprintln(r.out)
		section(r.out, fmt.Sprintf("Calls (%d)", len(op.Calls)))
		renderCalls(r.out, op.Calls)
		return nil
	}

	t := newTable(r.out, table.Row{"Operation", "State", "Calls", "Ready At", "Remaining"})
	for _, op := range result.Operations {
		remaining := "-"
		if op.State == models.OperationStateWaiting && op.ReadyAt > result.Clock.Timestamp {
			remaining = fmt.Sprintf("%ds", op.ReadyAt-result.Clock.Timestamp)
		}
		t.AppendRow(table.Row{
			idStyle.Sprint(shortHash(op.ID)),
			operationTitle(op.State),
			len(op.Calls),
			op.ReadyAt,
			remaining,
		})
	}
	t.Render()
	return nil
}

// RenderCancelOperation renders the result of timelock cancel
func (r *TimelockRenderer) RenderCancelOperation(result *usecase.CancelOperationResult) error {
	if result.Aborted {
		fmt.Fprintln(r.out, FormatWarning("Cancellation aborted"))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess("Operation canceled"))
	field(r.out, "Operation", result.Operation.ID.Hex())
	return nil
}

// RenderDeposit renders the result of a timelock deposit
func (r *TimelockRenderer) RenderDeposit(result *usecase.DepositResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deposited %s wei into the timelock", result.Amount)))
	field(r.out, "From", result.From.Hex())
	field(r.out, "Timelock balance", result.Timelock.Balance)
	return nil
}

// RenderRoles renders the role table
func (r *TimelockRenderer) RenderRoles(result *usecase.ListRolesResult) error {
	section(r.out, "Timelock roles")
	for _, role := range models.AllRoles {
		members := result.Members[role]
		fmt.Fprintf(r.out, "  %s\n", titleCaser.String(string(role)))
		if len(members) == 0 {
			fmt.Fprintf(r.out, "    %s\n", labelStyle.Sprint("(none)"))
		}
		for _, m := range members {
			fmt.Fprintf(r.out, "    %s%s\n", addressStyle.Sprint(m.Hex()), r.memberNote(result, m))
		}
	}
	fmt.Fprintln(r.out)
	if result.Anyone {
		fmt.Fprintln(r.out, labelStyle.Sprint("Execution is open to every account."))
	}
	if result.SelfAdmin {
		fmt.Fprintln(r.out, labelStyle.Sprint("Role changes require a governance proposal targeting the timelock."))
	}
	return nil
}

func (r *TimelockRenderer) memberNote(result *usecase.ListRolesResult, m common.Address) string {
	switch m {
	case result.Timelock:
		return labelStyle.Sprint(" (timelock)")
	case result.Governor:
		return labelStyle.Sprint(" (governor)")
	case models.AnyAccount:
		return labelStyle.Sprint(" (anyone)")
	}
	return ""
}

// RenderRoleChange renders the result of a grant, revoke or renounce
func (r *TimelockRenderer) RenderRoleChange(result *usecase.ManageRoleResult) error {
	if result.Aborted {
		fmt.Fprintln(r.out, FormatWarning("Role change aborted"))
		return nil
	}
	verb := map[usecase.RoleAction]string{
		usecase.RoleGrant:    "granted to",
		usecase.RoleRevoke:   "revoked from",
		usecase.RoleRenounce: "renounced by",
	}[result.Action]
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Role %s %s %s", result.Role, verb, result.Account.Hex())))
	field(r.out, "Members", len(result.Members))
	return nil
}

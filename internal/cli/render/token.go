package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// TokenRenderer renders token balances and token actions
type TokenRenderer struct {
	out io.Writer
}

// NewTokenRenderer creates a new token renderer
func NewTokenRenderer(out io.Writer) *TokenRenderer {
	return &TokenRenderer{out: out}
}

// RenderAction renders the result of mint, burn, transfer or delegate
func (r *TokenRenderer) RenderAction(result *usecase.ManageTokenResult) error {
	switch result.Action {
	case usecase.TokenDelegate:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s delegated to %s", result.Sender.Address.Hex(), result.Sender.Delegate.Hex())))
	default:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Token %s complete", result.Action)))
	}
	r.account(result.Sender)
	if result.Recipient != nil {
		r.account(*result.Recipient)
	}
	field(r.out, "Total supply", amount(result.TotalSupply))
	return nil
}

func (r *TokenRenderer) account(info governance.AccountInfo) {
	delegate := labelStyle.Sprint("none")
	if info.HasDelegate {
		delegate = shortAddress(info.Delegate)
	}
	field(r.out, shortAddress(info.Address), fmt.Sprintf("balance %s, votes %s, delegate %s", amount(info.Balance), amount(info.Power), delegate))
}

// RenderBalances renders the balance table
func (r *TokenRenderer) RenderBalances(result *usecase.GetBalancesResult) error {
	if len(result.Accounts) == 0 {
		fmt.Fprintln(r.out, "No token holders")
		return nil
	}
	t := newTable(r.out, table.Row{"Account", "Balance", "Votes", "Delegate", "Native"})
	for _, a := range result.Accounts {
		delegate := "-"
		if a.HasDelegate {
			delegate = shortAddress(a.Delegate)
		}
		t.AppendRow(table.Row{
			addressStyle.Sprint(a.Address.Hex()),
			amount(a.Balance),
			amount(a.Power),
			delegate,
			a.NativeAmount,
		})
	}
	t.Render()
	fmt.Fprintf(r.out, "\nTotal supply %s at %s %d\n", amount(result.TotalSupply), result.Clock.Mode, result.Clock.Ordinal)
	return nil
}

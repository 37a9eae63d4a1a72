package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	labelStyle         = color.New(color.Faint)
	idStyle            = color.New(color.FgCyan)
	addressStyle       = color.New(color.FgWhite)
	successStyle       = color.New(color.FgGreen)
	warningStyle       = color.New(color.FgYellow)
	errorStyle         = color.New(color.FgRed)

	titleCaser = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	msg := message
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return errorStyle.Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// StateTitle renders a proposal state the way it reads in prose, e.g. "Succeeded"
func StateTitle(state models.ProposalState) string {
	return stateStyle(state).Sprint(titleCaser.String(string(state)))
}

func stateStyle(state models.ProposalState) *color.Color {
	switch state {
	case models.ProposalStatePending:
		return color.New(color.FgYellow)
	case models.ProposalStateActive:
		return color.New(color.FgCyan, color.Bold)
	case models.ProposalStateSucceeded, models.ProposalStateQueued:
		return color.New(color.FgBlue)
	case models.ProposalStateExecuted:
		return color.New(color.FgGreen)
	case models.ProposalStateDefeated, models.ProposalStateCanceled, models.ProposalStateExpired:
		return color.New(color.FgRed)
	}
	return color.New(color.Reset)
}

func operationTitle(state models.OperationState) string {
	style := color.New(color.FgYellow)
	switch state {
	case models.OperationStateReady:
		style = color.New(color.FgCyan, color.Bold)
	case models.OperationStateDone:
		style = color.New(color.FgGreen)
	case models.OperationStateExpired, models.OperationStateCanceled:
		style = color.New(color.FgRed)
	}
	return style.Sprint(titleCaser.String(string(state)))
}

func shortHash(h common.Hash) string {
	s := h.Hex()
	return s[:10] + "…" + s[len(s)-4:]
}

func shortAddress(a common.Address) string {
	s := a.Hex()
	return s[:8] + "…" + s[len(s)-4:]
}

func amount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(strings.TrimLeft(s, "# "))
}

func section(out io.Writer, title string) {
	sectionHeaderStyle.Fprintln(out, title)
}

func field(out io.Writer, label string, value any) {
	fmt.Fprintf(out, "  %s %v\n", labelStyle.Sprintf("%-20s", label+":"), value)
}

// newTable creates a borderless table in the style used across the CLI
func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatUpper
	t.AppendHeader(header)
	return t
}

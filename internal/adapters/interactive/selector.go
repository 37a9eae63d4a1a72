package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// SelectorAdapter handles interactive selection and confirmation
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectProposal selects a proposal from a list
func (s *SelectorAdapter) SelectProposal(ctx context.Context, proposals []*models.ProposalView, prompt string) (*models.ProposalView, error) {
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("no proposals provided for selection")
	}
	if len(proposals) == 1 {
		return proposals[0], nil
	}

	options := FormatProposalOptions(proposals)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          fuzzySearcher(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	return proposals[index], nil
}

// Confirm asks a yes/no question. Declining is not an error.
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return true, nil
	}
	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FormatProposalOptions creates display strings for proposal selection
func FormatProposalOptions(proposals []*models.ProposalView) []string {
	options := make([]string, len(proposals))
	for i, p := range proposals {
		id := p.ID.Hex()
		title := firstLine(p.Description)
		options[i] = fmt.Sprintf("%s %s %s",
			color.New(color.FgWhite, color.Bold).Sprint(id[:12]),
			color.New(color.FgYellow).Sprintf("[%s]", p.State),
			title,
		)
	}
	return options
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

// fuzzySearcher creates a fuzzy search function for promptui
func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}
		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.ProposalSelector = (*SelectorAdapter)(nil)
	_ usecase.Confirmer        = (*SelectorAdapter)(nil)
)

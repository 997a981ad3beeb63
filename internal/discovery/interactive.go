package discovery

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptResult represents the user's choice when prompted for a rule.
type PromptResult int

const (
	// PromptAccept indicates the user accepted this rule.
	PromptAccept PromptResult = iota
	// PromptReject indicates the user rejected this rule.
	PromptReject
	// PromptAcceptAll indicates the user wants to accept all remaining rules.
	PromptAcceptAll
	// PromptRejectAll indicates the user wants to reject all remaining rules.
	PromptRejectAll
	// PromptQuit indicates the user wants to stop without keeping any rules.
	PromptQuit
)

// InteractivePrompter handles user prompts for rule selection.
type InteractivePrompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

// NewInteractivePrompter creates a new InteractivePrompter with the given reader and writer.
func NewInteractivePrompter(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		scanner: bufio.NewScanner(reader),
		writer:  writer,
	}
}

// PromptForRule asks the user whether to accept a discovered rule.
func (p *InteractivePrompter) PromptForRule(rule DiscoveredRule) (PromptResult, error) {
	subfolder := string(rule.Rule.Subfolder)
	if subfolder == "" {
		subfolder = "none"
	}
	fmt.Fprintf(p.writer, "\nDiscovered rule:\n")
	fmt.Fprintf(p.writer, "  Extension: %s\n", rule.Rule.Extension)
	fmt.Fprintf(p.writer, "  Folder:    %s\n", rule.Rule.BaseFolder)
	fmt.Fprintf(p.writer, "  Subfolder: %s\n", subfolder)
	fmt.Fprintf(p.writer, "  Files:     %d\n", rule.Files)

	fmt.Fprintf(p.writer, "\nAccept this rule? (y)es, (n)o, (a)ccept all, (r)eject all, (q)uit: ")

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return PromptQuit, fmt.Errorf("error reading input: %w", err)
		}
		// EOF
		return PromptQuit, nil
	}

	input := strings.TrimSpace(strings.ToLower(p.scanner.Text()))
	switch input {
	case "y", "yes":
		return PromptAccept, nil
	case "n", "no":
		return PromptReject, nil
	case "a", "accept all":
		return PromptAcceptAll, nil
	case "r", "reject all":
		return PromptRejectAll, nil
	case "q", "quit":
		return PromptQuit, nil
	default:
		fmt.Fprintf(p.writer, "Invalid input '%s', treating as reject.\n", input)
		return PromptReject, nil
	}
}

// Review walks the prompter over rules and returns the accepted ones.
// Quitting discards every earlier acceptance.
func (p *InteractivePrompter) Review(rules []DiscoveredRule) ([]DiscoveredRule, error) {
	var accepted []DiscoveredRule
	for i, rule := range rules {
		choice, err := p.PromptForRule(rule)
		if err != nil {
			return nil, err
		}
		switch choice {
		case PromptAccept:
			accepted = append(accepted, rule)
		case PromptAcceptAll:
			return append(accepted, rules[i:]...), nil
		case PromptRejectAll:
			return accepted, nil
		case PromptQuit:
			return nil, nil
		}
	}
	return accepted, nil
}

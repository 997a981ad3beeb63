package discovery

import (
	"bytes"
	"strings"
	"testing"

	"sortly/internal/config"
)

func sampleRules() []DiscoveredRule {
	return []DiscoveredRule{
		{Rule: config.Rule{Extension: ".jpg", BaseFolder: "Images", Subfolder: config.StrategyYear}, Files: 3},
		{Rule: config.Rule{Extension: ".mp3", BaseFolder: "Audio", Subfolder: config.StrategyMusicType}, Files: 2},
		{Rule: config.Rule{Extension: ".txt", BaseFolder: "Notes"}, Files: 1},
	}
}

func TestPromptForRuleChoices(t *testing.T) {
	tests := []struct {
		input string
		want  PromptResult
	}{
		{"y\n", PromptAccept},
		{"YES\n", PromptAccept},
		{"n\n", PromptReject},
		{"a\n", PromptAcceptAll},
		{"reject all\n", PromptRejectAll},
		{"q\n", PromptQuit},
		{"maybe\n", PromptReject},
		{"", PromptQuit},
	}
	for _, tt := range tests {
		output := &bytes.Buffer{}
		p := NewInteractivePrompter(strings.NewReader(tt.input), output)
		got, err := p.PromptForRule(sampleRules()[0])
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPromptForRuleShowsRule(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewInteractivePrompter(strings.NewReader("y\n"), output)
	if _, err := p.PromptForRule(sampleRules()[2]); err != nil {
		t.Fatal(err)
	}
	out := output.String()
	for _, want := range []string{".txt", "Notes", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"accept and reject", "y\nn\ny\n", []string{".jpg", ".txt"}},
		{"accept all", "n\na\n", []string{".mp3", ".txt"}},
		{"reject all", "y\nr\n", []string{".jpg"}},
		{"quit discards", "y\ny\nq\n", nil},
		{"eof quits", "y\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewInteractivePrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			accepted, err := p.Review(sampleRules())
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, r := range accepted {
				got = append(got, r.Rule.Extension)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("accepted %v, want %v", got, tt.want)
			}
		})
	}
}

package output

import (
	"errors"
	"strings"
	"testing"

	"sortly/internal/config"
	"sortly/internal/history"
	"sortly/internal/orchestrator"
)

func TestSummaryTable(t *testing.T) {
	summary := orchestrator.Summary{}
	summary.Add("Images/2024", 2)
	summary.Add("Documents", 1)

	out := SummaryTable(summary)
	for _, want := range []string{"Destination", "Images/2024", "Documents", "Total", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Documents") > strings.Index(out, "Images/2024") {
		t.Errorf("rows should be sorted:\n%s", out)
	}
}

func TestRulesTable(t *testing.T) {
	out := RulesTable(config.DefaultRules())
	for _, want := range []string{".jpg", "Images", "year", ".mp3", "music-type"} {
		if !strings.Contains(out, want) {
			t.Errorf("rules table missing %q:\n%s", want, out)
		}
	}
}

func TestPlanTableUsesRelativePaths(t *testing.T) {
	plan := &orchestrator.PlanResult{
		Root: "/data/inbox",
		Moves: []orchestrator.PlannedMove{
			{Source: "/data/inbox/a.pdf", Destination: "/data/inbox/PDFs/a.pdf", Kind: history.KindFile},
			{Source: "/data/inbox/Old", Destination: "/data/inbox/Archived_Folders/Old", Kind: history.KindFolder, Occupied: true},
		},
	}
	out := PlanTable(plan)
	for _, want := range []string{"PDFs/a.pdf", "Archived_Folders/Old", "folder", "exists", "2 moves"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/data/inbox") {
		t.Errorf("paths should be relative to the root:\n%s", out)
	}
}

func TestUndoAndErrorTables(t *testing.T) {
	undo := UndoTable(&history.UndoResult{Total: 4, Restored: 2, Skipped: 1, Failed: 1, PrunedDirs: []string{"/x/PDFs"}})
	for _, want := range []string{"Restored", "Skipped", "Failed", "Records", "4"} {
		if !strings.Contains(undo, want) {
			t.Errorf("undo table missing %q:\n%s", want, undo)
		}
	}

	errs := ErrorsTable("/r", []*orchestrator.SortError{
		{Kind: orchestrator.PerFileMoveFailure, Path: "/r/a.txt", Err: errors.New("permission denied")},
	})
	if !strings.Contains(errs, "a.txt") || !strings.Contains(errs, "permission denied") {
		t.Errorf("errors table incomplete:\n%s", errs)
	}
}

func TestTableKeepsHeaderCase(t *testing.T) {
	out := renderTable([]string{"Extension", "Folder"}, [][]string{{".pdf", "PDFs"}}, nil, []string{"1 rule"})
	if strings.Contains(out, "EXTENSION") || strings.Contains(out, "1 RULE") {
		t.Errorf("headers and footers must not be upper-cased:\n%s", out)
	}
	if !strings.Contains(out, "Extension") || !strings.Contains(out, "1 rule") {
		t.Errorf("header or footer missing:\n%s", out)
	}
}

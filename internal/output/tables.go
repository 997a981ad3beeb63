package output

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sortly/internal/config"
	"sortly/internal/history"
	"sortly/internal/orchestrator"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer []string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if len(footer) > 0 {
		f := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(footer) {
				f[i] = footer[i]
			} else {
				f[i] = ""
			}
		}
		tw.AppendFooter(f)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// SummaryTable renders destination folders and their file counts.
func SummaryTable(summary orchestrator.Summary) string {
	rows := make([][]string, 0, len(summary))
	for _, key := range summary.Keys() {
		rows = append(rows, []string{key, strconv.Itoa(summary[key])})
	}
	return renderTable(
		[]string{"Destination", "Files"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
		[]string{"Total", strconv.Itoa(summary.Total())},
	)
}

// RulesTable renders a rule set in extension order.
func RulesTable(rs config.RuleSet) string {
	rows := make([][]string, 0, len(rs))
	for _, ext := range rs.Extensions() {
		rule := rs[ext]
		rows = append(rows, []string{ext, rule.BaseFolder, strategyLabel(rule.Subfolder)})
	}
	return renderTable([]string{"Extension", "Folder", "Subfolder"}, rows, nil, nil)
}

// PlanTable renders the moves a sort pass would perform, paths relative to root.
func PlanTable(plan *orchestrator.PlanResult) string {
	rows := make([][]string, 0, len(plan.Moves))
	for _, m := range plan.Moves {
		note := ""
		if m.Occupied {
			note = "exists"
		}
		rows = append(rows, []string{
			relativeTo(plan.Root, m.Source),
			relativeTo(plan.Root, m.Destination),
			string(m.Kind),
			note,
		})
	}
	return renderTable(
		[]string{"Source", "Destination", "Type", "Note"},
		rows,
		nil,
		[]string{fmt.Sprintf("%d moves", len(plan.Moves))},
	)
}

// UndoTable renders the counts of an undo run.
func UndoTable(result *history.UndoResult) string {
	rows := [][]string{
		{"Restored", strconv.Itoa(result.Restored)},
		{"Skipped", strconv.Itoa(result.Skipped)},
		{"Failed", strconv.Itoa(result.Failed)},
		{"Empty folders removed", strconv.Itoa(len(result.PrunedDirs))},
	}
	return renderTable(
		[]string{"Undo", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
		[]string{"Records", strconv.Itoa(result.Total)},
	)
}

// ErrorsTable renders per-file sort errors.
func ErrorsTable(root string, errs []*orchestrator.SortError) string {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		cause := ""
		if e.Err != nil {
			cause = e.Err.Error()
		}
		rows = append(rows, []string{string(e.Kind), relativeTo(root, e.Path), cause})
	}
	return renderTable([]string{"Error", "Path", "Cause"}, rows, nil, nil)
}

func strategyLabel(s config.Strategy) string {
	if s == config.StrategyNone {
		return "-"
	}
	return string(s)
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

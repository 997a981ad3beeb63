package config

import (
	"path/filepath"
	"strings"
)

// ArchiveFolderName is the directory that receives archived pre-existing folders.
const ArchiveFolderName = "Archived_Folders"

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Rule key with the issue (e.g., "rules[.pdf].folder")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// audioExtensions are the extensions the music-type strategy can read tags from.
var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".m4b": true, ".m4p": true, ".alac": true,
	".flac": true, ".ogg": true, ".oga": true, ".opus": true, ".dsf": true,
}

// ValidateRuleSet checks a rule set for errors and returns all findings.
// Findings are reported in sorted extension order.
func ValidateRuleSet(rs RuleSet) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	add := func(issues []ConfigValidationError) {
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				result.Errors = append(result.Errors, issue)
			} else {
				result.Warnings = append(result.Warnings, issue)
			}
		}
	}

	for _, ext := range rs.Extensions() {
		add(validateRule(ext, rs[ext]))
	}
	add(validateOverlaps(rs))

	result.Valid = len(result.Errors) == 0
	return result
}

func formatField(ext, field string) string {
	return "rules[" + ext + "]." + field
}

func validateRule(key string, rule Rule) []ConfigValidationError {
	var issues []ConfigValidationError

	if key == "" || strings.ContainsAny(key, `/\ `) || strings.Count(key, ".") != 1 {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "extension"),
			Message:  "extension must be a single dotted suffix such as \".pdf\"",
			Severity: SeverityError,
		})
	}

	folder := strings.TrimSpace(rule.BaseFolder)
	if folder == "" {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "folder"),
			Message:  "folder cannot be empty",
			Severity: SeverityError,
		})
		return issues
	}

	if firstSegment(folder) == ArchiveFolderName {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "folder"),
			Message:  "folder cannot live inside " + ArchiveFolderName,
			Severity: SeverityError,
		})
	}

	if filepath.IsAbs(folder) {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "folder"),
			Message:  "absolute folder places files outside the sorted directory: " + folder,
			Severity: SeverityWarning,
		})
	} else if escapesRoot(folder) {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "folder"),
			Message:  "folder escapes the sorted directory: " + folder,
			Severity: SeverityWarning,
		})
	}

	if rule.Subfolder == StrategyMusicType && !audioExtensions[key] {
		issues = append(issues, ConfigValidationError{
			Field:    formatField(key, "subfolder"),
			Message:  "music-type on a non-audio extension always yields \"Other\"",
			Severity: SeverityWarning,
		})
	}

	return issues
}

// validateOverlaps warns when one rule's folder is nested inside another rule's folder.
func validateOverlaps(rs RuleSet) []ConfigValidationError {
	var issues []ConfigValidationError

	folders := make([]string, 0)
	owner := make(map[string]string)
	for _, ext := range rs.Extensions() {
		f := filepath.Clean(rs[ext].BaseFolder)
		if _, seen := owner[f]; seen {
			continue
		}
		owner[f] = ext
		folders = append(folders, f)
	}

	for i := 0; i < len(folders); i++ {
		for j := i + 1; j < len(folders); j++ {
			if directoriesNested(folders[i], folders[j]) {
				issues = append(issues, ConfigValidationError{
					Field:    formatField(owner[folders[j]], "folder"),
					Message:  "folder \"" + folders[j] + "\" overlaps with \"" + folders[i] + "\" used by " + owner[folders[i]],
					Severity: SeverityWarning,
				})
			}
		}
	}
	return issues
}

// directoriesNested reports whether one directory is a strict ancestor of the other.
func directoriesNested(dir1, dir2 string) bool {
	clean1 := filepath.Clean(dir1)
	clean2 := filepath.Clean(dir2)

	if clean1 == clean2 {
		return false
	}
	if strings.HasPrefix(clean2, clean1+string(filepath.Separator)) {
		return true
	}
	return strings.HasPrefix(clean1, clean2+string(filepath.Separator))
}

func escapesRoot(folder string) bool {
	clean := filepath.Clean(folder)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// firstSegment returns the first path element of a relative folder.
func firstSegment(folder string) string {
	clean := filepath.ToSlash(filepath.Clean(folder))
	if i := strings.Index(clean, "/"); i >= 0 {
		return clean[:i]
	}
	return clean
}

// TopLevelFolders returns the first path element of every relative base folder.
// A pre-existing directory with one of these names is owned by the rules.
func (rs RuleSet) TopLevelFolders() map[string]bool {
	out := make(map[string]bool)
	for _, rule := range rs {
		folder := strings.TrimSpace(rule.BaseFolder)
		if folder == "" || filepath.IsAbs(folder) {
			continue
		}
		out[filepath.ToSlash(filepath.Clean(folder))] = true
		out[firstSegment(folder)] = true
	}
	return out
}

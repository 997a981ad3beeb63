// Package normalizer handles file extension normalization for Sortly.
package normalizer

import "strings"

// Extension returns the lower-cased extension of a filename, including the leading dot.
// Filenames without a dot, dotfiles whose only dot is the first character (".bashrc"),
// and names ending in a dot have no extension and yield "".
func Extension(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 || lastDot == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[lastDot:])
}

// NormalizeExtension rewrites a rule key into its canonical form: trimmed,
// lower-cased, and carrying exactly one leading dot. An empty key stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + strings.ToLower(ext)
}

package mover

import (
	"path/filepath"
	"strconv"
	"strings"

	"sortly/internal/fsx"
)

// splitName splits a file name into stem and extension. Dotfiles and names
// ending in a dot have no extension.
func splitName(name string) (string, string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// DuplicateName returns a name that is free in destDir. If filename itself is
// taken it appends "_duplicate" before the extension, then "_duplicate_2",
// "_duplicate_3" and so on.
//
// Examples:
//   - "file.pdf" -> "file_duplicate.pdf" (if file.pdf exists)
//   - "file.pdf" -> "file_duplicate_2.pdf" (if file_duplicate.pdf exists too)
func DuplicateName(destDir, filename string) string {
	if !fsx.Exists(filepath.Join(destDir, filename)) {
		return filename
	}

	stem, ext := splitName(filename)
	candidate := stem + "_duplicate" + ext
	for n := 2; fsx.Exists(filepath.Join(destDir, candidate)); n++ {
		candidate = stem + "_duplicate_" + strconv.Itoa(n) + ext
	}
	return candidate
}

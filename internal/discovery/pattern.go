package discovery

import (
	"path"
	"regexp"

	"sortly/internal/classifier"
)

// yearFolderPattern matches the folder names the year strategy produces.
var yearFolderPattern = regexp.MustCompile(`^\d{4}$`)

// IsYearFolder reports whether name looks like a year subfolder such as "2024".
func IsYearFolder(name string) bool {
	return yearFolderPattern.MatchString(name)
}

// IsMusicTypeFolder reports whether name is one of the music-type subfolders.
func IsMusicTypeFolder(name string) bool {
	return name == classifier.MusicFolder || name == classifier.OtherFolder
}

// parentFolder returns the name of the directory holding relPath, or "" when
// the file sits directly in the analysed directory.
func parentFolder(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	return path.Base(dir)
}

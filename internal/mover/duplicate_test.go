package mover

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDuplicateNameExamples(t *testing.T) {
	tests := []struct {
		existing []string
		name     string
		want     string
	}{
		{nil, "file.pdf", "file.pdf"},
		{[]string{"file.pdf"}, "file.pdf", "file_duplicate.pdf"},
		{[]string{"file.pdf", "file_duplicate.pdf"}, "file.pdf", "file_duplicate_2.pdf"},
		{[]string{"Makefile"}, "Makefile", "Makefile_duplicate"},
		{[]string{".bashrc"}, ".bashrc", ".bashrc_duplicate"},
		{[]string{"archive.tar.gz"}, "archive.tar.gz", "archive.tar_duplicate.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dir := t.TempDir()
			for _, e := range tt.existing {
				if err := os.WriteFile(filepath.Join(dir, e), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if got := DuplicateName(dir, tt.name); got != tt.want {
				t.Errorf("DuplicateName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// Property: Generated duplicate names never collide
func TestDuplicateNameIsFree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("DuplicateName skips every taken _duplicate_N", prop.ForAll(
		func(stem, ext string, taken int) bool {
			dir, err := os.MkdirTemp("", "sortly-dup-*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(dir)

			names := []string{stem + ext, stem + "_duplicate" + ext}
			for n := 2; n <= taken; n++ {
				names = append(names, stem+"_duplicate_"+strconv.Itoa(n)+ext)
			}
			for _, n := range names {
				if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
					return false
				}
			}

			got := DuplicateName(dir, stem+ext)
			want := stem + "_duplicate_" + strconv.Itoa(max(taken, 1)+1) + ext
			return got == want
		},
		gen.Identifier(),
		gen.OneConstOf(".pdf", ".txt", ".jpg", ""),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

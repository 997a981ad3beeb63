// Package filetime resolves the timestamps Sortly uses to date files.
package filetime

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrUnavailable is returned when no usable timestamp exists for a file.
var ErrUnavailable = errors.New("file timestamp unavailable")

// Source identifies which timestamp was used.
type Source string

const (
	SourceBirth    Source = "birth"
	SourceModified Source = "modified"
	SourceEXIF     Source = "exif"
)

// Created returns the creation (birth) time of a file. When the platform or
// filesystem does not record birth times it falls back to the modification time.
// info may be nil, in which case the file is stat'ed.
func Created(path string, info fs.FileInfo) (time.Time, Source, error) {
	if info == nil {
		var err error
		info, err = os.Stat(path)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if t, ok := birthTime(path, info); ok && !t.IsZero() {
		return t, SourceBirth, nil
	}

	if mt := info.ModTime(); !mt.IsZero() {
		return mt, SourceModified, nil
	}

	return time.Time{}, "", ErrUnavailable
}

// CaptureTime reads the EXIF capture date (DateTimeOriginal, then DateTime) of an image.
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}

	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("exif date: %w", err)
	}
	return t, nil
}

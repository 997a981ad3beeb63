// Package classifier turns a rule's subfolder strategy into a concrete subfolder name.
package classifier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dhowden/tag"
	"golang.org/x/text/cases"

	"sortly/internal/config"
	"sortly/internal/filetime"
)

// ErrMetadataUnavailable is returned when the Year strategy cannot date a file.
var ErrMetadataUnavailable = errors.New("file metadata unavailable")

const (
	MusicFolder = "Music"
	OtherFolder = "Other"
)

// musicGenres are compared after Unicode case folding.
var musicGenres = []string{"pop", "rock", "hip hop", "electronic", "jazz", "classical"}

// YearSource selects where the Year strategy reads dates from.
type YearSource string

const (
	YearFromFilesystem YearSource = "filesystem"
	YearFromEXIF       YearSource = "exif"
)

// ParseYearSource converts a settings value into a YearSource.
func ParseYearSource(value string) (YearSource, error) {
	switch YearSource(value) {
	case "", YearFromFilesystem:
		return YearFromFilesystem, nil
	case YearFromEXIF:
		return YearFromEXIF, nil
	}
	return "", fmt.Errorf("unknown year source %q (want filesystem or exif)", value)
}

// TimeSource returns the timestamp the Year strategy formats.
type TimeSource func(path string, info fs.FileInfo) (time.Time, error)

// Tags holds the audio metadata the MusicType strategy inspects.
type Tags struct {
	Title  string
	Artist string
	Genre  string
}

// TagReader reads audio metadata from a file.
type TagReader func(path string) (Tags, error)

// Classification is the outcome of classifying one file.
type Classification struct {
	// Subfolder is the extra path segment, or "" for none.
	Subfolder string
	// Notice is a non-fatal problem met while classifying, such as unreadable tags.
	Notice error
}

// Classifier resolves subfolder strategies.
type Classifier struct {
	timeSource TimeSource
	yearSource YearSource
	readTags   TagReader
	location   *time.Location
	logger     *slog.Logger
	fold       cases.Caser
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTimeSource replaces the filesystem time source.
func WithTimeSource(ts TimeSource) Option {
	return func(c *Classifier) { c.timeSource = ts }
}

// WithYearSource selects filesystem or EXIF dates for the Year strategy.
func WithYearSource(src YearSource) Option {
	return func(c *Classifier) { c.yearSource = src }
}

// WithTagReader replaces the audio tag reader.
func WithTagReader(r TagReader) Option {
	return func(c *Classifier) { c.readTags = r }
}

// WithLocation sets the time zone years are computed in. Defaults to local time.
func WithLocation(loc *time.Location) Option {
	return func(c *Classifier) { c.location = loc }
}

// WithLogger sets the logger used for classification notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) { c.logger = logger }
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		timeSource: createdTime,
		yearSource: YearFromFilesystem,
		readTags:   ReadTags,
		location:   time.Local,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		fold:       cases.Fold(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the subfolder for path under strategy. info may be nil.
func (c *Classifier) Classify(strategy config.Strategy, path string, info fs.FileInfo) (Classification, error) {
	switch strategy {
	case config.StrategyNone, "":
		return Classification{}, nil
	case config.StrategyYear:
		year, err := c.year(path, info)
		if err != nil {
			return Classification{}, err
		}
		return Classification{Subfolder: year}, nil
	case config.StrategyMusicType:
		return c.musicType(path), nil
	default:
		return Classification{}, fmt.Errorf("unknown subfolder strategy %q", strategy)
	}
}

func (c *Classifier) year(path string, info fs.FileInfo) (string, error) {
	if c.yearSource == YearFromEXIF {
		t, err := filetime.CaptureTime(path)
		if err == nil {
			return formatYear(t.In(c.location)), nil
		}
		c.logger.Debug("no exif capture date, using file times", "path", path, "error", err)
	}

	t, err := c.timeSource(path, info)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrMetadataUnavailable)
	}
	return formatYear(t.In(c.location)), nil
}

func formatYear(t time.Time) string {
	return fmt.Sprintf("%04d", t.Year())
}

func createdTime(path string, info fs.FileInfo) (time.Time, error) {
	t, _, err := filetime.Created(path, info)
	return t, err
}

func (c *Classifier) musicType(path string) Classification {
	tags, err := c.readTags(path)
	if err != nil {
		notice := fmt.Errorf("read tags of %s: %w", path, err)
		c.logger.Warn("cannot read audio tags, classifying as Other", "path", path, "error", err)
		return Classification{Subfolder: OtherFolder, Notice: notice}
	}
	if c.IsMusic(tags) {
		return Classification{Subfolder: MusicFolder}
	}
	return Classification{Subfolder: OtherFolder}
}

// IsMusic reports whether tags describe a music track: both title and artist
// are set, or the genre is one of the recognised music genres.
func (c *Classifier) IsMusic(tags Tags) bool {
	if tags.Title != "" && tags.Artist != "" {
		return true
	}
	if tags.Genre == "" {
		return false
	}
	genre := c.fold.String(tags.Genre)
	for _, g := range musicGenres {
		if genre == c.fold.String(g) {
			return true
		}
	}
	return false
}

// ReadTags reads title, artist and genre from an audio file.
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, err
	}
	return Tags{Title: m.Title(), Artist: m.Artist(), Genre: m.Genre()}, nil
}

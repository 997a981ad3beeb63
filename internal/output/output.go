// Package output handles console output: verbose lines, progress, styled status lines and tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

type styles struct {
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	header  lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#F39C12")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true),
		header:  r.NewStyle().Foreground(lipgloss.Color("#3498DB")).Bold(true),
		faint:   r.NewStyle().Foreground(lipgloss.Color("#7F8C8D")),
	}
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config    Config
	styles    styles
	errStyles styles

	progressMu      sync.Mutex
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressWidth   int
}

// New creates a new Output instance with the given configuration.
// Colors are only emitted when the destination writer is a terminal.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config:    config,
		styles:    newStyles(lipgloss.NewRenderer(config.Writer)),
		errStyles: newStyles(lipgloss.NewRenderer(config.ErrWriter)),
	}
}

// DefaultConfig returns a Config writing to stdout and stderr with TTY detection.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func line(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.clearProgressLine()
	fmt.Fprintln(o.config.Writer, o.styles.faint.Render(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")))
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, line(format, args...))
}

// Header prints a section title.
func (o *Output) Header(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprintln(o.config.Writer, o.styles.header.Render(fmt.Sprintf(format, args...)))
}

// Success prints a completion message.
func (o *Output) Success(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprintln(o.config.Writer, o.styles.success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a non-fatal problem to stderr.
func (o *Output) Warn(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprintln(o.config.ErrWriter, o.errStyles.warn.Render("! "+fmt.Sprintf(format, args...)))
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprintln(o.config.ErrWriter, o.errStyles.err.Render(fmt.Sprintf(format, args...)))
}

// Print writes pre-rendered text, such as a table, followed by a newline.
func (o *Output) Print(text string) {
	o.clearProgressLine()
	fmt.Fprintln(o.config.Writer, text)
}

func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY && o.progressWidth > 0 {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
		o.progressWidth = 0
	}
}

// progressEnabled reports whether the in-place indicator is shown.
// It is suppressed on non-terminals and in verbose mode.
func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress indicator session. total may be 0 when unknown.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress advances the indicator and shows message next to the count.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current

	count := fmt.Sprintf("%d", current)
	if o.progressTotal > 0 {
		count = fmt.Sprintf("%d/%d", current, o.progressTotal)
	}
	if message == "" {
		message = "Sorting"
	}
	text := fmt.Sprintf("%s %s...", message, count)
	pad := ""
	if o.progressWidth > len(text) {
		pad = strings.Repeat(" ", o.progressWidth-len(text))
	}
	fmt.Fprint(o.config.Writer, "\r"+text+pad)
	o.progressWidth = len(text)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	if o.progressWidth > 0 {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
		o.progressWidth = 0
	}
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}

package output

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestOutput(verbose, tty bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(Config{Verbose: verbose, Writer: &out, ErrWriter: &errOut, IsTTY: tty}), &out, &errOut
}

func TestVerboseOutputOnlyAppearsWhenEnabled(t *testing.T) {
	quiet, buf, _ := newTestOutput(false, false)
	quiet.Verbose("moving %s", "a.txt")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	loud, buf, _ := newTestOutput(true, false)
	loud.Verbose("moving %s", "a.txt")
	if !strings.Contains(buf.String(), "moving a.txt") {
		t.Errorf("expected verbose line, got %q", buf.String())
	}
}

func TestMessagesGoToTheRightWriter(t *testing.T) {
	o, out, errOut := newTestOutput(false, false)

	o.Info("sorted %d files", 3)
	o.Success("done")
	o.Warn("tags unreadable")
	o.Error("failed: %v", errors.New("boom"))

	if !strings.Contains(out.String(), "sorted 3 files\n") || !strings.Contains(out.String(), "done") {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "tags unreadable") || !strings.Contains(errOut.String(), "failed: boom") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("non-terminal output must not carry escape codes: %q", out.String())
	}
}

func TestProgressSuppressedWithoutTTY(t *testing.T) {
	o, buf, _ := newTestOutput(false, false)
	o.StartProgress(10)
	o.UpdateProgress(1, "Sorting")
	o.EndProgress()
	if buf.Len() != 0 {
		t.Errorf("expected no progress output, got %q", buf.String())
	}
}

func TestProgressSuppressedInVerboseMode(t *testing.T) {
	o, buf, _ := newTestOutput(true, true)
	o.StartProgress(10)
	o.UpdateProgress(1, "")
	o.EndProgress()
	if buf.Len() != 0 {
		t.Errorf("expected no progress output, got %q", buf.String())
	}
}

// Property: progress lines always report the current count and total in place.
func TestProgressFormat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("progress line contains current/total and starts with a carriage return", prop.ForAll(
		func(current, total int) bool {
			o, buf, _ := newTestOutput(false, true)
			o.StartProgress(total)
			o.UpdateProgress(current, "Sorting")

			s := buf.String()
			return strings.HasPrefix(s, "\r") && strings.Contains(s, "Sorting "+strconv.Itoa(current)+"/"+strconv.Itoa(total)+"...")
		},
		gen.IntRange(0, 500),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestProgressClearedBeforeInfo(t *testing.T) {
	o, buf, _ := newTestOutput(false, true)
	o.StartProgress(0)
	o.UpdateProgress(4, "Watching")
	o.Info("pass complete")

	s := buf.String()
	if !strings.Contains(s, "Watching 4...") {
		t.Errorf("unknown total should show only the count: %q", s)
	}
	if !strings.HasSuffix(s, "\rpass complete\n") {
		t.Errorf("progress line should be cleared before info: %q", s)
	}
}

// Package progress renders indexing progress on stderr.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker shows a spinner while files are parsed and clears itself when
// the pass ends. Output goes to stderr so it never mixes with formatted
// command output.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewSpinner creates a tracker for a pass whose file count is not known
// up front (discovery and parse run in one pipeline).
func NewSpinner(label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(11),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label}
}

// Tick records one processed file. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.bar.Add(1)
}

// Done clears the tracker without output.
func (t *Tracker) Done() {
	t.bar.Finish()
	t.bar.Clear()
}

// Fail clears the tracker and notes the failure on stderr.
func (t *Tracker) Fail(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s failed: %v\n", t.label, err)
}

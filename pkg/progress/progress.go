// Package progress renders advisory progress for long generation runs.
// Rendering failures never affect the run.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// Kinds of reporter accepted by New.
const (
	KindBar     = "bar"
	KindSpinner = "spinner"
	KindNone    = "none"
)

// Reporter receives record counts as they are written.
type Reporter interface {
	// Start begins reporting a run of total records.
	Start(total int64, description string)

	// Add records n more written records.
	Add(n int)

	// Finish ends reporting.
	Finish()

	// Count returns the records reported so far.
	Count() int64
}

// New returns the reporter named by kind writing to w. Unknown kinds are an
// error; a nil w means os.Stderr.
func New(kind string, w io.Writer) (Reporter, error) {
	if w == nil {
		w = os.Stderr
	}
	switch kind {
	case KindBar, "":
		return NewBar(w), nil
	case KindSpinner:
		return NewSpinner(w), nil
	case KindNone:
		return Nop(), nil
	default:
		return nil, fmt.Errorf("unknown progress kind: %s", kind)
	}
}

type counter struct {
	n atomic.Int64
}

// Count returns the rows reported so far.
func (c *counter) Count() int64 { return c.n.Load() }

// Bar reports progress with a terminal progress bar.
type Bar struct {
	counter
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBar returns a bar reporter writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

// Start implements Reporter.Start.
func (b *Bar) Start(total int64, description string) {
	b.n.Store(0)
	b.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.w) }),
	)
}

// Add implements Reporter.Add.
func (b *Bar) Add(n int) {
	b.n.Add(int64(n))
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

// Finish implements Reporter.Finish.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Spinner reports progress with a spinner and a running row count. It suits
// outputs whose size, not row count, is what the user watches.
type Spinner struct {
	counter
	total   int64
	desc    string
	spinner *spinner.Spinner
}

// NewSpinner returns a spinner reporter writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

// Start implements Reporter.Start.
func (s *Spinner) Start(total int64, description string) {
	s.n.Store(0)
	s.total = total
	s.desc = description
	s.spinner.Suffix = s.suffix()
	s.spinner.Start()
}

// Add implements Reporter.Add.
func (s *Spinner) Add(n int) {
	s.n.Add(int64(n))
	s.spinner.Lock()
	s.spinner.Suffix = s.suffix()
	s.spinner.Unlock()
}

// Finish implements Reporter.Finish.
func (s *Spinner) Finish() {
	s.spinner.Stop()
}

func (s *Spinner) suffix() string {
	return fmt.Sprintf(" %s %d/%d rows", s.desc, s.n.Load(), s.total)
}

type nop struct {
	counter
}

// Nop returns a reporter that only counts.
func Nop() Reporter {
	return &nop{}
}

func (*nop) Start(int64, string) {}
func (p *nop) Add(n int)         { p.n.Add(int64(n)) }
func (*nop) Finish()             {}

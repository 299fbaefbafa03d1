package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// ProgressDisplay orchestrates the display of progress indicators
type ProgressDisplay struct {
	capabilities TerminalCapabilities
	current      *SectionInfo
	spinner      *spinner.Spinner
	symbols      ProgressSymbols
	out          io.Writer
	spinOut      io.Writer
}

// NewProgressDisplay creates a display writing status lines to stdout and
// the spinner to stderr.
func NewProgressDisplay(caps TerminalCapabilities) *ProgressDisplay {
	return NewProgressDisplayTo(caps, os.Stdout, os.Stderr)
}

// NewProgressDisplayTo creates a display over explicit writers.
func NewProgressDisplayTo(caps TerminalCapabilities, out, spinOut io.Writer) *ProgressDisplay {
	return &ProgressDisplay{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
		out:          out,
		spinOut:      spinOut,
	}
}

// StartSection begins displaying progress for a section
func (p *ProgressDisplay) StartSection(section SectionInfo) error {
	if err := section.Validate(); err != nil {
		return err
	}

	p.StopSpinner()
	section.Status = SectionRunning
	p.current = &section

	msg := buildSectionMessage(section)

	if p.capabilities.IsTTY {
		p.spinner = spinner.New(
			spinner.CharSets[p.symbols.SpinnerSet],
			100*time.Millisecond,
			spinner.WithWriter(p.spinOut),
		)
		p.spinner.Suffix = " " + msg
		p.spinner.Start()
	} else {
		fmt.Fprintln(p.out, msg)
	}

	return nil
}

// CompleteSection stops the spinner and displays completion status
func (p *ProgressDisplay) CompleteSection(section SectionInfo, elapsed time.Duration) {
	p.StopSpinner()

	mark := checkmark(p.symbols, p.capabilities.SupportsColor)
	counter := formatSectionCounter(section.Number, section.Total)
	fmt.Fprintf(p.out, "%s %s %s done (%s)\n", mark, counter, capitalize(section.Name), formatElapsed(elapsed))

	p.current = nil
}

// FailSection stops the spinner and displays failure status
func (p *ProgressDisplay) FailSection(section SectionInfo, err error) {
	p.StopSpinner()

	mark := failureMark(p.symbols, p.capabilities.SupportsColor)
	counter := formatSectionCounter(section.Number, section.Total)
	fmt.Fprintf(p.out, "%s %s %s failed: %v\n", mark, counter, capitalize(section.Name), err)

	p.current = nil
}

// Current returns the section being displayed, or nil.
func (p *ProgressDisplay) Current() *SectionInfo {
	return p.current
}

// StopSpinner stops the spinner without showing completion/failure
// This is useful when a section's own output should reach the terminal
func (p *ProgressDisplay) StopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

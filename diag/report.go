package diag

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
)

// Outcome is the result of one check.
type Outcome struct {
	Name    string
	Passed  bool
	Err     error
	Details []string
}

// Warning reports whether the check failed only because the device flagged errors.
func (o Outcome) Warning() bool {
	return !o.Passed && errors.Is(o.Err, ErrDeviceWarning)
}

// Verdict returns PASS, FAIL or WARN.
func (o Outcome) Verdict() string {
	switch {
	case o.Passed:
		return "PASS"
	case o.Warning():
		return "WARN"
	default:
		return "FAIL"
	}
}

// Report is the immutable result of a diagnostic run.
type Report struct {
	reset    *Outcome
	outcomes []Outcome
	passed   bool
	elapsed  time.Duration
}

// clone returns a copy of o that shares no memory with it.
func (o Outcome) clone() Outcome {
	o.Details = append([]string(nil), o.Details...)
	return o
}

func cloneOutcomes(outcomes []Outcome) []Outcome {
	c := make([]Outcome, len(outcomes))
	for i, o := range outcomes {
		c[i] = o.clone()
	}
	return c
}

func newReport(reset *Outcome, outcomes []Outcome, elapsed time.Duration) *Report {
	r := &Report{
		outcomes: cloneOutcomes(outcomes),
		passed:   true,
		elapsed:  elapsed,
	}
	if reset != nil {
		o := reset.clone()
		r.reset = &o
	}
	for _, o := range outcomes {
		r.passed = r.passed && o.Passed
	}
	return r
}

// Passed reports whether every check passed.
// The reset outcome is reported separately and does not affect it.
func (r *Report) Passed() bool {
	return r.passed
}

// Outcomes returns the check outcomes in the order they ran.
func (r *Report) Outcomes() []Outcome {
	return cloneOutcomes(r.outcomes)
}

// Failed returns the outcomes of the checks that did not pass.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.outcomes {
		if !o.Passed {
			failed = append(failed, o.clone())
		}
	}
	return failed
}

// Reset returns the outcome of the hardware reset, if one was performed.
func (r *Report) Reset() (Outcome, bool) {
	if r.reset == nil {
		return Outcome{}, false
	}
	return r.reset.clone(), true
}

// Elapsed returns the duration of the whole run.
func (r *Report) Elapsed() time.Duration {
	return r.elapsed
}

// WriteTo writes the summary table and overall banner.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	fmt.Fprintln(&b, "TEST SUMMARY")
	fmt.Fprintln(&b)
	tw := tabwriter.NewWriter(&b, 0, 8, 2, ' ', 0)
	if reset, ok := r.Reset(); ok {
		fmt.Fprintf(tw, "  Hardware Reset:\t%s\n", reset.Verdict())
	}
	for i, o := range r.outcomes {
		fmt.Fprintf(tw, "  Test %d - %s:\t%s\n", i+1, o.Name, o.Verdict())
	}
	tw.Flush()
	fmt.Fprintln(&b)
	if r.passed {
		fmt.Fprintln(&b, "  ALL TESTS PASSED - MODULE READY FOR USE")
	} else {
		fmt.Fprintln(&b, "  SOME TESTS FAILED - CHECK ERRORS ABOVE")
		for _, o := range r.Failed() {
			fmt.Fprintf(&b, "    %s: %v\n", o.Name, o.Err)
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Total test duration: %d ms\n", r.elapsed.Milliseconds())
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

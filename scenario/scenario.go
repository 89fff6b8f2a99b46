// Package scenario runs scripted clock operations against a tester and
// checks the results.
//
// A scenario is a YAML document:
//
//	name: scenario A
//	tester: j750
//	steps:
//	  - set_timeset: {name: intram, period: 40}
//	  - add_pin: pinx
//	  - enable_clock: {pin: pinx, period_ns: 80}
//	  - start_clock: pinx
//	  - expect: {pin: pinx, running: true, half_period: 1}
//	  - start_clock: pinx
//	    expect_error: invalid_transition
package scenario

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/vtester/pin"
	"github.com/sarchlab/vtester/tester"
	"github.com/sarchlab/vtester/timing"
	"gopkg.in/yaml.v3"
)

// Scenario is a parsed script.
type Scenario struct {
	Name   string `yaml:"name"`
	Tester string `yaml:"tester"`
	Steps  []Step `yaml:"steps"`
}

// Parse reads a scenario from r. Unknown keys are errors.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &Scenario{}
	if err := dec.Decode(s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty script", ErrMalformedScenario)
		}

		if errors.Is(err, ErrMalformedScenario) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %v", ErrMalformedScenario, err)
	}

	return s, nil
}

// Load reads a scenario file. A scenario without a name is named after the
// file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return s, nil
}

// Options controls how a scenario runs.
type Options struct {
	// ContinueOnError records failed steps and runs the rest of the script
	// instead of stopping at the first failure.
	ContinueOnError bool
}

// RunReport summarizes a run.
type RunReport struct {
	Scenario string
	Steps    int
	Passed   int
	Failures []*StepError
}

// OK tells if every step that ran passed.
func (r RunReport) OK() bool {
	return len(r.Failures) == 0
}

func (r RunReport) String() string {
	return fmt.Sprintf("%s: %d/%d steps passed", r.Scenario, r.Passed, r.Steps)
}

// Run executes the steps against t. Without ContinueOnError it stops at the
// first failed step and returns its *StepError. With ContinueOnError it runs
// every step and returns an error wrapping ErrFailed if any step failed.
func (s *Scenario) Run(t *tester.Tester, opts Options) (RunReport, error) {
	report := RunReport{Scenario: s.Name}

	for i := range s.Steps {
		step := &s.Steps[i]
		report.Steps++

		err := s.runStep(t, step)
		if err == nil {
			report.Passed++
			continue
		}

		stepErr := &StepError{Index: i, Line: step.Line, Op: step.Op, Err: err}
		report.Failures = append(report.Failures, stepErr)

		if !opts.ContinueOnError {
			return report, stepErr
		}

		log.Printf("%s: %v", s.Name, stepErr)
	}

	if !report.OK() {
		return report, fmt.Errorf("%w: %s: %d of %d steps failed",
			ErrFailed, s.Name, len(report.Failures), report.Steps)
	}

	return report, nil
}

func (s *Scenario) runStep(t *tester.Tester, step *Step) error {
	if step.Op == OpExpect {
		return checkExpectation(t, step.Expect)
	}

	err := apply(t, step)

	if step.ExpectError == "" {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnexpectedError, err)
		}

		return nil
	}

	if err == nil {
		return fmt.Errorf("%w: %s", ErrMissingError, step.ExpectError)
	}

	if kind := ErrorKind(err); kind != step.ExpectError {
		return fmt.Errorf("%w: want %s, got %w",
			ErrUnexpectedError, step.ExpectError, err)
	}

	return nil
}

func apply(t *tester.Tester, step *Step) error {
	switch step.Op {
	case OpSetTimeset:
		return t.SetTimeset(step.Timeset.Name,
			timing.VTimeInNs(step.Timeset.Period))
	case OpAddPin:
		_, err := t.AddPin(step.Pin)
		return err
	case OpUpdateClocks:
		return t.UpdateClocks()
	case OpCycle:
		t.Cycles(step.Cycles)
		return nil
	}

	p, err := t.Pin(step.Pin)
	if err != nil {
		return err
	}

	return applyToPin(p, step)
}

func applyToPin(p *pin.Pin, step *Step) error {
	switch step.Op {
	case OpEnableClock:
		if err := step.Enable.check(); err != nil {
			return err
		}

		return p.Enable(step.Enable.Config())
	case OpDisableClock:
		p.Disable()
		return nil
	case OpStartClock:
		return p.Start()
	case OpPauseClock:
		return p.Pause()
	case OpResumeClock:
		return p.Resume()
	case OpStopClock:
		return p.Stop()
	case OpUpdateClock:
		return p.Update()
	}

	panic(fmt.Sprintf("unknown operation %s", step.Op))
}

func checkExpectation(t *tester.Tester, e Expectation) error {
	var mismatches []string

	check := func(what string, want, got any) {
		if want != got {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: want %v, got %v", what, want, got))
		}
	}

	if e.AnyRunning != nil {
		check("any_running", *e.AnyRunning, t.AnyClocksRunning())
	}

	if e.Cycle != nil {
		check("cycle", *e.Cycle, t.CurrentCycle())
	}

	if e.Timeset != nil {
		ts, _ := t.ActiveTimeset()
		check("timeset", *e.Timeset, ts.Name)
	}

	if e.Pin != "" {
		p, err := t.Pin(e.Pin)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnexpectedError, err)
		}

		checkPin(p, e, check)
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectationFailed,
			strings.Join(mismatches, "; "))
	}

	return nil
}

func checkPin(p *pin.Pin, e Expectation, check func(string, any, any)) {
	if e.State != nil {
		check(p.Name()+" state", *e.State, p.State().String())
	}

	if e.IsClock != nil {
		check(p.Name()+" is_clock", *e.IsClock, p.IsAClock())
	}

	if e.Running != nil {
		check(p.Name()+" running", *e.Running, p.IsARunningClock())
	}

	if e.HalfPeriod != nil {
		half, ok := p.HalfPeriod()
		if !ok {
			check(p.Name()+" half_period", *e.HalfPeriod, "none")
		} else {
			check(p.Name()+" half_period", *e.HalfPeriod, half)
		}
	}

	if e.Stale != nil {
		check(p.Name()+" stale", *e.Stale, p.IsStale())
	}
}

package scenario

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/timing"
	"gopkg.in/yaml.v3"
)

// The operations a step can perform.
const (
	OpSetTimeset   = "set_timeset"
	OpAddPin       = "add_pin"
	OpEnableClock  = string(clock.OpEnable)
	OpDisableClock = string(clock.OpDisable)
	OpStartClock   = string(clock.OpStart)
	OpPauseClock   = string(clock.OpPause)
	OpResumeClock  = string(clock.OpResume)
	OpStopClock    = string(clock.OpStop)
	OpUpdateClock  = string(clock.OpUpdate)
	OpUpdateClocks = "update_clocks"
	OpCycle        = "cycle"
	OpExpect       = "expect"
)

// TimesetArgs are the arguments of set_timeset.
type TimesetArgs struct {
	Name   string  `yaml:"name"`
	Period float64 `yaml:"period"`
}

// EnableArgs are the arguments of enable_clock. Exactly one of PeriodNs and
// FrequencyKHz should be given; anything else is a malformed config.
type EnableArgs struct {
	Pin          string   `yaml:"pin"`
	PeriodNs     *float64 `yaml:"period_ns"`
	FrequencyKHz *float64 `yaml:"frequency_khz"`
}

// check rejects arguments that Config would otherwise lose: both values
// given, or a given value that is not positive.
func (a EnableArgs) check() error {
	if a.PeriodNs != nil && a.FrequencyKHz != nil {
		return fmt.Errorf("%w: both period_ns and frequency_khz given",
			clock.ErrMalformedConfig)
	}

	if a.PeriodNs != nil && !(*a.PeriodNs > 0) {
		return fmt.Errorf("%w: period_ns=%g", clock.ErrMalformedConfig,
			*a.PeriodNs)
	}

	if a.FrequencyKHz != nil && !(*a.FrequencyKHz > 0) {
		return fmt.Errorf("%w: frequency_khz=%g", clock.ErrMalformedConfig,
			*a.FrequencyKHz)
	}

	return nil
}

// Config converts the arguments to a clock config.
func (a EnableArgs) Config() clock.Config {
	var cfg clock.Config

	if a.PeriodNs != nil {
		cfg.Period = timing.VTimeInNs(*a.PeriodNs)
	}

	if a.FrequencyKHz != nil {
		cfg.Frequency = timing.Freq(*a.FrequencyKHz) * timing.KHz
	}

	return cfg
}

// Expectation lists what a step checks. Unset fields are not checked. The
// pin fields need Pin.
type Expectation struct {
	Pin        string  `yaml:"pin"`
	State      *string `yaml:"state"`
	IsClock    *bool   `yaml:"is_clock"`
	Running    *bool   `yaml:"running"`
	HalfPeriod *uint64 `yaml:"half_period"`
	Stale      *bool   `yaml:"stale"`

	AnyRunning *bool   `yaml:"any_running"`
	Cycle      *uint64 `yaml:"cycle"`
	Timeset    *string `yaml:"timeset"`
}

func (e Expectation) checksPin() bool {
	return e.State != nil || e.IsClock != nil || e.Running != nil ||
		e.HalfPeriod != nil || e.Stale != nil
}

// Step is a single operation of a scenario.
type Step struct {
	Op string

	// Pin is the target of the pin operations.
	Pin string

	Timeset TimesetArgs
	Enable  EnableArgs
	Cycles  uint64
	Expect  Expectation

	// ExpectError is the error kind the operation must fail with.
	ExpectError string

	// Line is the line of the step in the script.
	Line int
}

// rawStep mirrors the YAML layout of a step. Exactly one operation key is
// set.
type rawStep struct {
	SetTimeset   *TimesetArgs `yaml:"set_timeset"`
	AddPin       *string      `yaml:"add_pin"`
	EnableClock  *EnableArgs  `yaml:"enable_clock"`
	DisableClock *string      `yaml:"disable_clock"`
	StartClock   *string      `yaml:"start_clock"`
	PauseClock   *string      `yaml:"pause_clock"`
	ResumeClock  *string      `yaml:"resume_clock"`
	StopClock    *string      `yaml:"stop_clock"`
	UpdateClock  *string      `yaml:"update_clock"`
	UpdateClocks *bool        `yaml:"update_clocks"`
	Cycle        *uint64      `yaml:"cycle"`
	Expect       *Expectation `yaml:"expect"`

	ExpectError string `yaml:"expect_error"`
}

// UnmarshalYAML decodes a step. A step is either a mapping with one
// operation key, or the bare name of an operation without arguments.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	s.Line = node.Line

	if node.Kind == yaml.ScalarNode {
		if node.Value != OpUpdateClocks {
			return s.errorf("%q needs arguments", node.Value)
		}

		s.Op = OpUpdateClocks

		return nil
	}

	if err := s.checkKeys(node); err != nil {
		return err
	}

	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if err := s.fromRaw(raw); err != nil {
		return err
	}

	return s.validate()
}

func (s *Step) fromRaw(raw rawStep) error {
	var ops []string

	pinOps := []struct {
		op  string
		pin *string
	}{
		{OpAddPin, raw.AddPin},
		{OpDisableClock, raw.DisableClock},
		{OpStartClock, raw.StartClock},
		{OpPauseClock, raw.PauseClock},
		{OpResumeClock, raw.ResumeClock},
		{OpStopClock, raw.StopClock},
		{OpUpdateClock, raw.UpdateClock},
	}

	for _, p := range pinOps {
		if p.pin != nil {
			ops = append(ops, p.op)
			s.Pin = *p.pin
		}
	}

	if raw.SetTimeset != nil {
		ops = append(ops, OpSetTimeset)
		s.Timeset = *raw.SetTimeset
	}

	if raw.EnableClock != nil {
		ops = append(ops, OpEnableClock)
		s.Enable = *raw.EnableClock
		s.Pin = raw.EnableClock.Pin
	}

	if raw.UpdateClocks != nil {
		if !*raw.UpdateClocks {
			return s.errorf("update_clocks must be true")
		}

		ops = append(ops, OpUpdateClocks)
	}

	if raw.Cycle != nil {
		ops = append(ops, OpCycle)
		s.Cycles = *raw.Cycle
	}

	if raw.Expect != nil {
		ops = append(ops, OpExpect)
		s.Expect = *raw.Expect
		s.Pin = raw.Expect.Pin
	}

	switch len(ops) {
	case 0:
		return s.errorf("no operation")
	case 1:
		s.Op = ops[0]
	default:
		return s.errorf("more than one operation: %v", ops)
	}

	s.ExpectError = raw.ExpectError

	return nil
}

func (s *Step) validate() error {
	if s.ExpectError != "" {
		if s.Op == OpExpect || s.Op == OpCycle {
			return s.errorf("%s cannot expect an error", s.Op)
		}

		if _, ok := errorKinds[s.ExpectError]; !ok {
			return s.errorf("unknown error kind %q", s.ExpectError)
		}
	}

	if s.Op == OpExpect && s.Expect.checksPin() && s.Expect.Pin == "" {
		return s.errorf("expect needs a pin to check pin state")
	}

	return nil
}

// checkKeys rejects unknown keys in a step and in its arguments.
func (s *Step) checkKeys(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return s.errorf("a step must be a mapping or an operation name")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		args, known := stepKeys[key.Value]
		if !known {
			return s.errorf("unknown key %q", key.Value)
		}

		if args == nil || value.Kind != yaml.MappingNode {
			continue
		}

		for j := 0; j+1 < len(value.Content); j += 2 {
			if !args[value.Content[j].Value] {
				return s.errorf("unknown key %q in %s",
					value.Content[j].Value, key.Value)
			}
		}
	}

	return nil
}

var stepKeys = map[string]map[string]bool{
	OpSetTimeset:   yamlKeys(TimesetArgs{}),
	OpAddPin:       nil,
	OpEnableClock:  yamlKeys(EnableArgs{}),
	OpDisableClock: nil,
	OpStartClock:   nil,
	OpPauseClock:   nil,
	OpResumeClock:  nil,
	OpStopClock:    nil,
	OpUpdateClock:  nil,
	OpUpdateClocks: nil,
	OpCycle:        nil,
	OpExpect:       yamlKeys(Expectation{}),
	"expect_error": nil,
}

func yamlKeys(v any) map[string]bool {
	keys := make(map[string]bool)

	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]
		if tag != "" {
			keys[tag] = true
		}
	}

	return keys
}

func (s *Step) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s",
		ErrMalformedScenario, s.Line, fmt.Sprintf(format, args...))
}

// ErrMalformedScenario is returned when a scenario script cannot be parsed.
var ErrMalformedScenario = errors.New("scenario: malformed script")

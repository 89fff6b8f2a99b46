package scenario

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/tester"
)

var _ = Describe("Scenario", func() {
	var t *tester.Tester

	BeforeEach(func() {
		t = tester.New("j750")
	})

	DescribeTable("should pass the example scripts",
		func(path string, steps int) {
			s, err := Load(path)
			Expect(err).NotTo(HaveOccurred())

			report, err := s.Run(t, Options{})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.OK()).To(BeTrue())
			Expect(report.Steps).To(Equal(steps))
			Expect(report.Passed).To(Equal(steps))
		},
		Entry("scenario A", "testdata/scenario_a.yaml", 12),
		Entry("scenario B", "testdata/scenario_b.yaml", 10),
		Entry("scenario C", "testdata/scenario_c.yaml", 11),
		Entry("expected errors", "testdata/errors.yaml", 17),
	)

	It("should name scenarios after the file", func() {
		s, err := Load("testdata/errors.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("errors"))

		s, err = Load("testdata/scenario_a.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("scenario A"))
		Expect(s.Tester).To(Equal("j750"))
	})

	It("should stop at the first failure", func() {
		s, err := Load("testdata/failing.yaml")
		Expect(err).NotTo(HaveOccurred())

		report, err := s.Run(t, Options{})

		var stepErr *StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Index).To(Equal(2))
		Expect(stepErr.Line).To(Equal(4))
		Expect(stepErr.Op).To(Equal(OpStartClock))
		Expect(err).To(MatchError(ErrUnexpectedError))
		Expect(err).To(MatchError(clock.ErrInvalidTransition))
		Expect(report.Steps).To(Equal(3))
		Expect(report.Passed).To(Equal(2))

		pinx, _ := t.Pin("pinx")
		Expect(pinx.IsAClock()).To(BeFalse())
	})

	It("should continue on errors when asked", func() {
		s, err := Load("testdata/failing.yaml")
		Expect(err).NotTo(HaveOccurred())

		report, err := s.Run(t, Options{ContinueOnError: true})

		Expect(err).To(MatchError(ErrFailed))
		Expect(report.Steps).To(Equal(6))
		Expect(report.Passed).To(Equal(3))
		Expect(report.Failures).To(HaveLen(3))
		Expect(report.Failures[1].Err).To(MatchError(ErrExpectationFailed))
		Expect(report.Failures[1].Err.Error()).To(
			ContainSubstring("pinx half_period: want 3, got 1"))
		Expect(report.Failures[2].Err).To(MatchError(ErrMissingError))
		Expect(report.String()).To(Equal("failing: 3/6 steps passed"))
	})

	It("should report the wrong error kind", func() {
		s, err := Parse(strings.NewReader(`
steps:
  - add_pin: pinx
  - start_clock: pinx
    expect_error: no_active_timeset
`))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run(t, Options{})

		Expect(err).To(MatchError(ErrUnexpectedError))
		Expect(err).To(MatchError(clock.ErrInvalidTransition))
	})

	DescribeTable("should reject malformed enable arguments",
		func(args string) {
			s, err := Parse(strings.NewReader(`
steps:
  - set_timeset: {name: intram, period: 40}
  - add_pin: pinx
  - enable_clock: ` + args + `
`))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(t, Options{})

			Expect(err).To(MatchError(clock.ErrMalformedConfig))
			pinx, _ := t.Pin("pinx")
			Expect(pinx.IsAClock()).To(BeFalse())
		},
		Entry("zero frequency next to a period",
			"{pin: pinx, period_ns: 80, frequency_khz: 0}"),
		Entry("zero period next to a frequency",
			"{pin: pinx, period_ns: 0, frequency_khz: 32}"),
		Entry("zero period", "{pin: pinx, period_ns: 0}"),
		Entry("negative frequency", "{pin: pinx, frequency_khz: -32}"),
	)

	It("should check the cycle", func() {
		s, err := Parse(strings.NewReader(`
steps:
  - cycle: 5
  - cycle: 0
  - expect: {cycle: 5, any_running: false}
`))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run(t, Options{})

		Expect(err).NotTo(HaveOccurred())
		Expect(t.CurrentCycle()).To(Equal(uint64(5)))
	})

	It("should fail expectations on unknown pins", func() {
		s, err := Parse(strings.NewReader(`
steps:
  - expect: {pin: nope, is_clock: false}
`))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run(t, Options{})

		Expect(err).To(MatchError(tester.ErrPinNotFound))
	})
})

var _ = Describe("Parse", func() {
	It("should decode steps", func() {
		s, err := Parse(strings.NewReader(`
name: parse
steps:
  - set_timeset: {name: intram, period: 40}
  - enable_clock: {pin: pinx, frequency_khz: 32}
    expect_error: pin_not_found
  - update_clocks: true
  - update_clocks
  - cycle: 3
`))

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Steps).To(HaveLen(5))
		Expect(s.Steps[0].Op).To(Equal(OpSetTimeset))
		Expect(s.Steps[0].Timeset).To(Equal(TimesetArgs{Name: "intram", Period: 40}))
		Expect(s.Steps[1].Op).To(Equal(OpEnableClock))
		Expect(s.Steps[1].Pin).To(Equal("pinx"))
		Expect(s.Steps[1].Enable.Config()).To(Equal(clock.FrequencyConfig(32000)))
		Expect(s.Steps[1].ExpectError).To(Equal(KindPinNotFound))
		Expect(s.Steps[2].Op).To(Equal(OpUpdateClocks))
		Expect(s.Steps[3].Op).To(Equal(OpUpdateClocks))
		Expect(s.Steps[4].Cycles).To(Equal(uint64(3)))
		Expect(s.Steps[4].Line).To(Equal(9))
	})

	DescribeTable("should reject malformed scripts",
		func(script string) {
			_, err := Parse(strings.NewReader(script))

			Expect(err).To(MatchError(ErrMalformedScenario))
		},
		Entry("empty", ""),
		Entry("unknown top-level key", "steps: []\nowner: me\n"),
		Entry("unknown operation", "steps:\n  - start_clok: pinx\n"),
		Entry("two operations", "steps:\n  - add_pin: pinx\n    start_clock: pinx\n"),
		Entry("no operation", "steps:\n  - expect_error: invalid_transition\n"),
		Entry("unknown argument", "steps:\n  - enable_clock: {pin: pinx, period: 80}\n"),
		Entry("unknown error kind", "steps:\n  - start_clock: pinx\n    expect_error: oops\n"),
		Entry("error on expect", "steps:\n  - expect: {cycle: 1}\n    expect_error: invalid_transition\n"),
		Entry("pin check without pin", "steps:\n  - expect: {running: true}\n"),
		Entry("bare operation with arguments", "steps:\n  - start_clock\n"),
		Entry("update_clocks false", "steps:\n  - update_clocks: false\n"),
		Entry("bad value", "steps:\n  - cycle: many\n"),
	)
})

var _ = Describe("ErrorKind", func() {
	It("should name the error kinds", func() {
		Expect(ErrorKind(&clock.TransitionError{})).To(Equal(KindInvalidTransition))
		Expect(ErrorKind(clock.ErrNoActiveTimeset)).To(Equal(KindNoActiveTimeset))
		Expect(ErrorKind(errors.New("other"))).To(BeEmpty())
	})
})

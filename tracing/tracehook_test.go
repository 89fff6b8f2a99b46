package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/tester"
	"go.uber.org/mock/gomock"
)

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		t        *tester.Tester
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		t = tester.New("j750")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trace timeset changes", func() {
		CollectTrace(t, tracer)

		gomock.InOrder(
			tracer.EXPECT().TimesetChange(TimesetEvent{
				Tester:        "j750",
				Current:       "intram",
				CurrentPeriod: 40,
			}),
			tracer.EXPECT().TimesetChange(TimesetEvent{
				Tester:         "j750",
				Previous:       "intram",
				PreviousPeriod: 40,
				Current:        "intram_fast",
				CurrentPeriod:  20,
			}),
		)

		Expect(t.SetTimeset("intram", 40)).To(Succeed())
		Expect(t.SetTimeset("intram_fast", 20)).To(Succeed())
	})

	It("should trace clock operations of existing pins", func() {
		Expect(t.SetTimeset("intram", 40)).To(Succeed())
		pinx, _ := t.AddPin("pinx")
		CollectTrace(t, tracer)

		gomock.InOrder(
			tracer.EXPECT().ClockTransition(ClockEvent{
				Tester:        "j750",
				Pin:           "pinx",
				Clock:         "pinx.Clock",
				Op:            "enable_clock",
				From:          "Disabled",
				To:            "Stopped",
				HalfPeriod:    1,
				Timeset:       "intram",
				TimesetPeriod: 40,
			}),
			tracer.EXPECT().Cycle(CycleEvent{
				Tester: "j750",
				From:   0,
				Count:  3,
				Cycle:  3,
			}),
			tracer.EXPECT().ClockTransition(ClockEvent{
				Tester:     "j750",
				Pin:        "pinx",
				Clock:      "pinx.Clock",
				Cycle:      3,
				Op:         "start_clock",
				From:       "Stopped",
				To:         "Running",
				HalfPeriod: 1,
			}),
		)

		Expect(pinx.Enable(clock.PeriodConfig(80))).To(Succeed())
		t.Cycles(3)
		Expect(pinx.Start()).To(Succeed())
	})

	It("should trace pins added later", func() {
		Expect(t.SetTimeset("intram", 40)).To(Succeed())
		CollectTrace(t, tracer)

		piny, _ := t.AddPin("piny")

		tracer.EXPECT().ClockTransition(ClockEvent{
			Tester:        "j750",
			Pin:           "piny",
			Clock:         "piny.Clock",
			Op:            "enable_clock",
			From:          "Disabled",
			To:            "Stopped",
			HalfPeriod:    391,
			Timeset:       "intram",
			TimesetPeriod: 40,
		})

		Expect(piny.Enable(clock.FrequencyConfig(32000))).To(Succeed())
	})

	It("should not trace failed operations", func() {
		pinx, _ := t.AddPin("pinx")
		CollectTrace(t, tracer)

		Expect(pinx.Start()).NotTo(Succeed())
		Expect(pinx.Enable(clock.PeriodConfig(80))).NotTo(Succeed())
	})

	It("should panic if the same tracer is attached twice", func() {
		CollectTrace(t, tracer)

		Expect(func() { CollectTrace(t, tracer) }).To(Panic())
	})

	It("should allow different tracers", func() {
		another := NewMockTracer(mockCtrl)
		CollectTrace(t, tracer)
		CollectTrace(t, another)

		tracer.EXPECT().Cycle(gomock.Any())
		another.EXPECT().Cycle(gomock.Any())

		t.Cycle()
	})
})

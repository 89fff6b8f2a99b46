package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
		hook1    *MockHook
		hook2    *MockHook
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = NewHookableBase()
		hook1 = NewMockHook(mockCtrl)
		hook2 = NewMockHook(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should register hooks", func() {
		base.AcceptHook(hook1)
		base.AcceptHook(hook2)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(Equal([]Hook{hook1, hook2}))
		Expect(base.HasHook(hook1)).To(BeTrue())
	})

	It("should panic on duplicated hooks", func() {
		base.AcceptHook(hook1)

		Expect(func() { base.AcceptHook(hook1) }).To(Panic())
	})

	It("should invoke hooks in order", func() {
		pos := &HookPos{Name: "Test"}
		ctx := HookCtx{Domain: base, Pos: pos, Item: "item"}

		base.AcceptHook(hook1)
		base.AcceptHook(hook2)

		gomock.InOrder(
			hook1.EXPECT().Func(ctx),
			hook2.EXPECT().Func(ctx),
		)

		base.InvokeHook(ctx)
	})
})

package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/eventstream"
	"github.com/papercomputeco/soapy/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	var p *nop.Publisher

	BeforeEach(func() {
		p = nop.NewPublisher()
	})

	It("rejects nil events", func() {
		Expect(p.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("rejects events without a conversation", func() {
		event := eventstream.NewBranchDeleted("", "alt")
		Expect(p.Publish(context.Background(), event)).To(MatchError(eventstream.ErrIncompleteEvent))
	})

	It("drops storage events", func() {
		Expect(p.Publish(context.Background(), eventstream.NewBranchCreated("c1", "alt", 2))).To(Succeed())
		Expect(p.Publish(context.Background(), eventstream.NewBranchDeleted("c1", "alt"))).To(Succeed())
	})

	It("closes repeatedly", func() {
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})
})

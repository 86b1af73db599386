package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

var _ = Describe("DecodeAttachmentData", func() {
	DescribeTable("accepted payloads",
		func(payload string) {
			data, err := conversation.DecodeAttachmentData(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("hello"))
		},
		Entry("padded", "aGVsbG8="),
		Entry("unpadded", "aGVsbG8"),
		Entry("data url", "data:text/plain;base64,aGVsbG8="),
		Entry("surrounding whitespace", "  aGVsbG8=\n"),
	)

	It("rejects garbage", func() {
		_, err := conversation.DecodeAttachmentData("not base64!")
		Expect(err).To(HaveOccurred())
	})
})

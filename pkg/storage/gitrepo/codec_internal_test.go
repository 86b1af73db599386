package gitrepo

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

var _ = Describe("item file codec", func() {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	It("writes a readable header for messages", func() {
		model := "gpt: 4"
		data := encodeMessage(&conversation.Message{
			Role:      conversation.RoleUser,
			Content:   "hello",
			Timestamp: ts,
			Model:     &model,
		})

		Expect(string(data)).To(Equal("---\n" +
			"role: user\n" +
			"timestamp: 2025-01-02T03:04:05Z\n" +
			"model: \"gpt: 4\"\n" +
			"attachments: []\n" +
			"---\n\n" +
			"hello"))

		item, err := decodeItem(conversation.KindMessage, 7, data)
		Expect(err).NotTo(HaveOccurred())
		msg := item.(*conversation.Message)
		Expect(msg.SequenceNumber).To(Equal(7))
		Expect(*msg.Model).To(Equal(model))
		Expect(msg.AIProvider).To(BeNil())
	})

	It("accepts files without a trailing blank line or body", func() {
		item, err := decodeItem(conversation.KindToolCall, 1, []byte("---\ntoolName: ls\nrequestedAt: 2025-01-02T03:04:05Z\n---"))
		Expect(err).NotTo(HaveOccurred())
		Expect(item.(*conversation.ToolCall).Parameters).To(BeEmpty())
	})

	It("rejects malformed files", func() {
		_, err := decodeItem(conversation.KindMessage, 1, []byte("role: user\n"))
		Expect(err).To(MatchError(errNoHeader))

		_, err = decodeItem(conversation.KindMessage, 1, []byte("---\nrole: user\n"))
		Expect(err).To(MatchError(errUnterminatedHeader))

		_, err = decodeItem(conversation.KindMessage, 1, []byte("---\nrole: robot\ntimestamp: 2025-01-02T03:04:05Z\n---\n\nx"))
		Expect(err).To(HaveOccurred())

		_, err = decodeItem(conversation.KindToolResult, 1, []byte("---\nstatus: success\nexecutedAt: yesterday\n---\n"))
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("scalar quoting",
		func(in, out string) {
			Expect(scalar(in)).To(Equal(out))
		},
		Entry("plain token", "assistant", "assistant"),
		Entry("path", "files/a.png", "files/a.png"),
		Entry("colon", "a: b", `"a: b"`),
		Entry("empty", "", `""`),
		Entry("null literal", "null", `"null"`),
		Entry("leading dash", "-x", `"-x"`),
		Entry("newline", "a\nb", `"a\nb"`),
	)
})

var _ = Describe("item file names", func() {
	DescribeTable("parsing",
		func(name string, seq int, kind conversation.Kind, ok bool) {
			gotSeq, gotKind, gotOK := parseItemFileName(name)
			Expect(gotOK).To(Equal(ok))
			if ok {
				Expect(gotSeq).To(Equal(seq))
				Expect(gotKind).To(Equal(kind))
			}
		},
		Entry("user message", "0001-user.md", 1, conversation.KindMessage, true),
		Entry("tool role message", "0012-tool.md", 12, conversation.KindMessage, true),
		Entry("tool call", "0003-tool_call.md", 3, conversation.KindToolCall, true),
		Entry("tool result", "0004-tool_result.md", 4, conversation.KindToolResult, true),
		Entry("wide number", "12345-assistant.md", 12345, conversation.KindMessage, true),
		Entry("zero", "0000-user.md", 0, conversation.Kind(""), false),
		Entry("short number", "001-user.md", 0, conversation.Kind(""), false),
		Entry("unknown kind", "0001-robot.md", 0, conversation.Kind(""), false),
		Entry("descriptor", ".soapy-metadata.json", 0, conversation.Kind(""), false),
	)

	It("pads to four digits", func() {
		Expect(itemFileName(5, "user")).To(Equal("0005-user.md"))
		Expect(itemFileName(10000, suffixToolCall)).To(Equal("10000-tool_call.md"))
	})
})

var _ = Describe("commit subjects", func() {
	It("encode and decode sequence numbers", func() {
		for _, msg := range []string{
			messageCommitMessage(3, conversation.RoleAssistant),
			toolCallCommitMessage(3, "grep"),
			toolResultCommitMessage(3, conversation.ToolStatusTimeout),
		} {
			seq, ok := parseCommitSequence(msg)
			Expect(ok).To(BeTrue(), msg)
			Expect(seq).To(Equal(3))
		}

		_, ok := parseCommitSequence(initCommitMessage("c"))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("conversation ids", func() {
	It("validates ids", func() {
		Expect(ValidateID("team/chat-1")).To(Succeed())
		Expect(ValidateID("chat")).To(Succeed())
		Expect(ValidateID("")).NotTo(Succeed())
		Expect(ValidateID("team/../x")).NotTo(Succeed())
		Expect(ValidateID(".hidden")).NotTo(Succeed())
	})
})

package conversation_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

var _ = Describe("Item", func() {
	Describe("Validate", func() {
		It("rejects unknown message roles", func() {
			m := &conversation.Message{Role: "narrator", Content: "hi"}
			Expect(m.Validate()).To(MatchError(ContainSubstring("invalid message role")))
		})

		It("requires attachment filenames", func() {
			m := &conversation.Message{
				Role:        conversation.RoleUser,
				Attachments: []conversation.Attachment{{ContentType: "image/png"}},
			}
			Expect(m.Validate()).To(HaveOccurred())
		})

		It("requires a tool name on tool calls", func() {
			Expect((&conversation.ToolCall{}).Validate()).To(HaveOccurred())
			Expect((&conversation.ToolCall{ToolName: "search"}).Validate()).To(Succeed())
		})

		It("checks tool result status, reference and payload", func() {
			r := &conversation.ToolResult{Status: "ok", ToolCallSequenceNumber: 1}
			Expect(r.Validate()).To(HaveOccurred())

			r = &conversation.ToolResult{Status: conversation.ToolStatusSuccess}
			Expect(r.Validate()).To(HaveOccurred())

			r = &conversation.ToolResult{
				Status:                 conversation.ToolStatusTimeout,
				ToolCallSequenceNumber: 2,
				Result:                 json.RawMessage(`{"broken"`),
			}
			Expect(r.Validate()).To(MatchError(ContainSubstring("not valid JSON")))

			r.Result = json.RawMessage(`{"ok":true}`)
			Expect(r.Validate()).To(Succeed())
		})
	})

	Describe("Messages", func() {
		It("keeps only messages in order", func() {
			items := []conversation.Item{
				&conversation.Message{SequenceNumber: 1, Role: conversation.RoleUser},
				&conversation.ToolCall{SequenceNumber: 2, ToolName: "search"},
				&conversation.Message{SequenceNumber: 3, Role: conversation.RoleAssistant},
			}

			msgs := conversation.Messages(items)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].SequenceNumber).To(Equal(1))
			Expect(msgs[1].SequenceNumber).To(Equal(3))
		})
	})

	Describe("Envelope", func() {
		It("tags each variant and round trips", func() {
			items := []conversation.Item{
				&conversation.Message{SequenceNumber: 1, CommitHash: "a", Role: conversation.RoleUser, Content: "hi"},
				&conversation.ToolCall{SequenceNumber: 2, CommitHash: "b", ToolName: "search"},
				&conversation.ToolResult{SequenceNumber: 3, CommitHash: "c", Status: conversation.ToolStatusSuccess},
			}

			envs := conversation.NewEnvelopes(items)
			Expect(envs[0].Type).To(Equal(conversation.KindMessage))
			Expect(envs[1].Type).To(Equal(conversation.KindToolCall))
			Expect(envs[2].Type).To(Equal(conversation.KindToolResult))
			Expect(envs[2].CommitHash).To(Equal("c"))

			data, err := json.Marshal(envs)
			Expect(err).NotTo(HaveOccurred())

			var decoded []conversation.Envelope
			Expect(json.Unmarshal(data, &decoded)).To(Succeed())

			item, err := decoded[1].Item()
			Expect(err).NotTo(HaveOccurred())
			call, ok := item.(*conversation.ToolCall)
			Expect(ok).To(BeTrue())
			Expect(call.ToolName).To(Equal("search"))
		})

		It("rejects envelopes without a payload", func() {
			_, err := conversation.Envelope{Type: conversation.KindMessage}.Item()
			Expect(err).To(HaveOccurred())

			_, err = conversation.Envelope{Type: "note"}.Item()
			Expect(err).To(MatchError(ContainSubstring("unknown item type")))
		})
	})
})

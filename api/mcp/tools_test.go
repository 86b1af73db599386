package mcp

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/logger"
	"github.com/papercomputeco/soapy/pkg/storage/inmemory"
)

var _ = Describe("Conversation tools", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()

		var err error
		server, err = NewServer(Config{Driver: driver, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		Expect(driver.CreateConversation(ctx, &conversation.Conversation{ID: "team/c1", OwnerID: "u1"})).To(Succeed())
		_, err = driver.CommitMessage(ctx, "team/c1", &conversation.Message{Role: conversation.RoleUser, Content: "hello"}, "")
		Expect(err).NotTo(HaveOccurred())
		_, err = driver.CommitToolCall(ctx, "team/c1", &conversation.ToolCall{
			ToolName:   "search",
			Parameters: map[string]any{"q": "go"},
		}, "")
		Expect(err).NotTo(HaveOccurred())
		_, err = driver.CommitToolResult(ctx, "team/c1", &conversation.ToolResult{
			ToolCallSequenceNumber: 2,
			Status:                 conversation.ToolStatusSuccess,
			Result:                 json.RawMessage(`{"hits":1}`),
		}, "")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("list_conversations", func() {
		It("lists conversations", func() {
			Expect(driver.CreateConversation(ctx, &conversation.Conversation{ID: "c2"})).To(Succeed())

			result, output, err := server.handleListConversations(ctx, nil, ListConversationsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(2))

			ids := []string{output.Conversations[0].ID, output.Conversations[1].ID}
			Expect(ids).To(ConsistOf("team/c1", "c2"))
		})

		It("honors the limit", func() {
			Expect(driver.CreateConversation(ctx, &conversation.Conversation{ID: "c2"})).To(Succeed())

			_, output, err := server.handleListConversations(ctx, nil, ListConversationsInput{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(1))
		})
	})

	Describe("get_conversation_items", func() {
		It("flattens every item kind in sequence order", func() {
			result, output, err := server.handleGetItems(ctx, nil, GetItemsInput{ConversationID: "team/c1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(3))

			Expect(output.Items[0].Type).To(Equal("message"))
			Expect(output.Items[0].Role).To(Equal("user"))
			Expect(output.Items[0].Content).To(Equal("hello"))

			Expect(output.Items[1].Type).To(Equal("tool_call"))
			Expect(output.Items[1].ToolName).To(Equal("search"))
			Expect(output.Items[1].Parameters).To(MatchJSON(`{"q":"go"}`))

			Expect(output.Items[2].Type).To(Equal("tool_result"))
			Expect(output.Items[2].ToolCallSequenceNumber).To(Equal(2))
			Expect(output.Items[2].Status).To(Equal("success"))
			Expect(output.Items[2].Result).To(MatchJSON(`{"hits":1}`))

			for i, item := range output.Items {
				Expect(item.SequenceNumber).To(Equal(i + 1))
				Expect(item.CommitHash).NotTo(BeEmpty())
			}
		})

		It("reads a named branch", func() {
			_, err := driver.CreateBranch(ctx, "team/c1", "alt", 1, "u1")
			Expect(err).NotTo(HaveOccurred())

			_, output, err := server.handleGetItems(ctx, nil, GetItemsInput{ConversationID: "team/c1", Branch: "alt"})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(1))
			Expect(output.Branch).To(Equal("alt"))
		})

		It("reports unknown conversations as tool errors", func() {
			result, _, err := server.handleGetItems(ctx, nil, GetItemsInput{ConversationID: "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("requires a conversation id", func() {
			result, _, err := server.handleGetItems(ctx, nil, GetItemsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("list_branches", func() {
		It("lists branches with their divergence point", func() {
			_, err := driver.CreateBranch(ctx, "team/c1", "alt", 2, "u1")
			Expect(err).NotTo(HaveOccurred())

			result, output, err := server.handleListBranches(ctx, nil, ListBranchesInput{ConversationID: "team/c1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(output.Branches[0].Name).To(Equal("alt"))
			Expect(output.Branches[0].SourceSequenceNumber).To(Equal(2))
			Expect(output.Branches[0].MessageCount).To(Equal(2))
			Expect(output.Branches[0].CreatorID).To(Equal("u1"))
		})

		It("mirrors the structured output as text", func() {
			result, output, err := server.handleListBranches(ctx, nil, ListBranchesInput{ConversationID: "team/c1"})
			Expect(err).NotTo(HaveOccurred())

			expected, err := json.Marshal(output)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Content).To(HaveLen(1))
			Expect(result.Content[0].(*mcp.TextContent).Text).To(MatchJSON(expected))
		})
	})
})

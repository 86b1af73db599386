package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/logger"
)

var _ = Describe("sequence numbering in a large conversation", func() {
	const (
		id     = "large"
		seeded = 9999
	)

	var (
		ctx    context.Context
		driver *Driver
		dir    string
	)

	say := func(text string) *conversation.CommitResult {
		res, err := driver.CommitMessage(ctx, id, &conversation.Message{Role: conversation.RoleUser, Content: text}, "")
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return res
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = NewDriver(Config{BasePath: GinkgoT().TempDir(), Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.CreateConversation(ctx, &conversation.Conversation{ID: id})).To(Succeed())
		dir = driver.Resolver().Resolve(id)

		ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for seq := 1; seq <= seeded; seq++ {
			role := conversation.RoleUser
			if seq%2 == 0 {
				role = conversation.RoleAssistant
			}
			data := encodeMessage(&conversation.Message{Role: role, Content: "turn", Timestamp: ts})
			Expect(os.WriteFile(filepath.Join(dir, itemFileName(seq, string(role))), data, 0o644)).To(Succeed())
		}
	})

	It("scans past four digit file names and then trusts the counter", func() {
		Expect(itemFileName(seeded, "user")).To(Equal("9999-user.md"))

		first := say("rollover")
		Expect(first.SequenceNumber).To(Equal(10000))
		Expect(filepath.Join(dir, "10000-user.md")).To(BeAnExistingFile())
		Expect(driver.loadSequenceCache(dir)).To(HaveKeyWithValue("main", 10000))

		// A stray higher file is only seen by a scan, so the next number
		// proves the counter was used.
		Expect(os.WriteFile(filepath.Join(dir, "20000-user.md"), encodeMessage(&conversation.Message{Role: conversation.RoleUser, Content: "stray", Timestamp: time.Now()}), 0o644)).To(Succeed())
		Expect(say("fast path").SequenceNumber).To(Equal(10001))
		Expect(os.Remove(filepath.Join(dir, "20000-user.md"))).To(Succeed())

		items, err := driver.GetConversationItems(ctx, id, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(seeded + 2))
		for i, item := range items {
			Expect(item.Sequence()).To(Equal(i + 1))
		}
		Expect(items[seeded].(*conversation.Message).Content).To(Equal("rollover"))
		Expect(items[seeded].(*conversation.Message).CommitHash).To(Equal(first.CommitHash))

		_, err = driver.CreateBranch(ctx, id, "after-rollover", 10000, "")
		Expect(err).NotTo(HaveOccurred())
		branched, err := driver.GetConversationItems(ctx, id, "after-rollover")
		Expect(err).NotTo(HaveOccurred())
		Expect(branched).To(HaveLen(1))
		Expect(branched[0].Sequence()).To(Equal(10000))
	})

	It("rebuilds a missing counter with a full scan", func() {
		_ = os.Remove(filepath.Join(dir, sequenceCacheFile))
		Expect(say("after scan").SequenceNumber).To(Equal(seeded + 1))
	})
})

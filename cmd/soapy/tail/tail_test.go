package tailcmder

import (
	"context"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/logger"
	"github.com/papercomputeco/soapy/pkg/storage/gitrepo"
)

var _ = Describe("tailer", func() {
	var (
		driver *gitrepo.Driver
		out    *gbytes.Buffer
		t      *tailer
	)

	commit := func(ctx context.Context, content, branch string) {
		_, err := driver.CommitMessage(ctx, "c1", &conversation.Message{Role: conversation.RoleUser, Content: content}, branch)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
	}

	BeforeEach(func(ctx SpecContext) {
		var err error
		driver, err = gitrepo.NewDriver(gitrepo.Config{
			BasePath:  filepath.Join(GinkgoT().TempDir(), "conversations"),
			Signature: git.Signature{Name: "soapy", Email: "soapy@localhost"},
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.CreateConversation(ctx, &conversation.Conversation{ID: "c1"})).To(Succeed())

		out = gbytes.NewBuffer()
		t = &tailer{driver: driver, id: "c1", out: out, oneline: true}
	})

	It("prints the last n items", func(ctx SpecContext) {
		commit(ctx, "first", "")
		commit(ctx, "second", "")
		commit(ctx, "third", "")

		Expect(t.printLatest(ctx, 2)).To(Succeed())
		Expect(out).To(gbytes.Say("second"))
		Expect(out).To(gbytes.Say("third"))
		Expect(string(out.Contents())).NotTo(ContainSubstring("first"))
		Expect(t.last).To(Equal(3))
	})

	It("prints nothing with n of 0 and does not replay history later", func(ctx SpecContext) {
		commit(ctx, "first", "")
		commit(ctx, "second", "")

		Expect(t.printLatest(ctx, 0)).To(Succeed())
		Expect(out.Contents()).To(BeEmpty())
		Expect(t.last).To(Equal(2))

		commit(ctx, "third", "")
		Expect(t.printNew(ctx)).To(Succeed())
		Expect(string(out.Contents())).To(ContainSubstring("third"))
		Expect(string(out.Contents())).NotTo(ContainSubstring("first"))
		Expect(string(out.Contents())).NotTo(ContainSubstring("second"))
	})

	It("prints only items past the last one seen", func(ctx SpecContext) {
		commit(ctx, "first", "")
		Expect(t.printLatest(ctx, 10)).To(Succeed())

		commit(ctx, "second", "")
		Expect(t.printNew(ctx)).To(Succeed())
		Expect(t.printNew(ctx)).To(Succeed())

		Expect(string(out.Contents())).To(ContainSubstring("second"))
		Expect(strings.Count(string(out.Contents()), "second")).To(Equal(1))
		Expect(t.last).To(Equal(2))
	})

	It("follows new commits", func(ctx SpecContext) {
		commit(ctx, "first", "")
		Expect(t.printLatest(ctx, 10)).To(Succeed())

		watcher, err := watch(driver.Resolver().Resolve("c1"))
		Expect(err).NotTo(HaveOccurred())
		defer watcher.Close()

		followCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			done <- t.follow(followCtx, watcher)
		}()

		commit(ctx, "second", "")
		Eventually(out).Should(gbytes.Say("second"))

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("follows a branch that is not checked out", func(ctx SpecContext) {
		commit(ctx, "first", "")
		_, err := driver.CreateBranch(ctx, "c1", "alt", 1, "")
		Expect(err).NotTo(HaveOccurred())

		t.branch = "alt"
		Expect(t.printLatest(ctx, 10)).To(Succeed())

		watcher, err := watch(driver.Resolver().Resolve("c1"))
		Expect(err).NotTo(HaveOccurred())
		defer watcher.Close()

		followCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			defer GinkgoRecover()
			_ = t.follow(followCtx, watcher)
		}()

		commit(ctx, "on alt", "alt")
		Eventually(out).Should(gbytes.Say("on alt"))
	})
})

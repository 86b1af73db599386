package git_test

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/git"
)

var _ = Describe("Repo", func() {
	var (
		dir  string
		repo *git.Repo
	)

	writeAndCommit := func(name, content, message string) plumbing.Hash {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
		hash, err := repo.CommitFiles(message, name)
		Expect(err).NotTo(HaveOccurred())
		return hash
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		repo, err = git.Init(dir, "main", git.DefaultSignature)
		Expect(err).NotTo(HaveOccurred())
	})

	It("detects repositories", func() {
		Expect(git.IsRepository(dir)).To(BeTrue())
		Expect(git.IsRepository(GinkgoT().TempDir())).To(BeFalse())
	})

	It("reports the unborn default branch", func() {
		branch, err := repo.CurrentBranch()
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("main"))

		head, err := repo.HeadHash()
		Expect(err).NotTo(HaveOccurred())
		Expect(head.IsZero()).To(BeTrue())
	})

	It("commits staged files with the configured signature", func() {
		hash := writeAndCommit("a.md", "a", "first")

		commit, err := repo.Commit(hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(commit.Message).To(Equal("first"))
		Expect(commit.Author.Name).To(Equal("soapy"))

		head, err := repo.HeadHash()
		Expect(err).NotTo(HaveOccurred())
		Expect(head).To(Equal(hash))
	})

	It("creates and deletes branch refs without moving HEAD", func() {
		first := writeAndCommit("a.md", "a", "first")
		writeAndCommit("b.md", "b", "second")

		Expect(repo.CreateBranchRef("alt", first)).To(Succeed())

		current, err := repo.CurrentBranch()
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(Equal("main"))

		hash, err := repo.BranchHash("alt")
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal(first))

		branches, err := repo.Branches()
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(HaveKey("main"))
		Expect(branches).To(HaveKey("alt"))

		Expect(repo.DeleteBranchRef("alt")).To(Succeed())
		exists, err := repo.BranchExists("alt")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("checks out branches and swaps tracked files", func() {
		first := writeAndCommit("a.md", "a", "first")
		writeAndCommit("b.md", "b", "second")
		Expect(repo.CreateBranchRef("alt", first)).To(Succeed())

		Expect(repo.Checkout("alt")).To(Succeed())

		_, err := os.Stat(filepath.Join(dir, "b.md"))
		Expect(os.IsNotExist(err)).To(BeTrue())

		current, err := repo.CurrentBranch()
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(Equal("alt"))
	})

	It("keeps named untracked files across checkout", func() {
		first := writeAndCommit("a.md", "a", "first")
		writeAndCommit("b.md", "b", "second")
		Expect(repo.CreateBranchRef("alt", first)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "cache.json"), []byte("{}"), 0o644)).To(Succeed())

		Expect(repo.Checkout("alt", "cache.json", "absent.json")).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "cache.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("{}"))
		Expect(filepath.Join(dir, "absent.json")).NotTo(BeAnExistingFile())
	})

	It("walks a bounded log newest first", func() {
		writeAndCommit("a.md", "a", "first")
		writeAndCommit("b.md", "b", "second")
		head := writeAndCommit("c.md", "c", "third")

		var messages []string
		err := repo.Log(head, 2, func(c *object.Commit) error {
			messages = append(messages, c.Message)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(messages).To(Equal([]string{"third", "second"}))
	})

	It("finds the merge base of diverged branches", func() {
		base := writeAndCommit("a.md", "a", "first")
		Expect(repo.CreateBranchRef("alt", base)).To(Succeed())
		mainTip := writeAndCommit("b.md", "b", "second")

		Expect(repo.Checkout("alt")).To(Succeed())
		altTip := writeAndCommit("c.md", "c", "third")

		mb, err := repo.MergeBase(mainTip, altTip)
		Expect(err).NotTo(HaveOccurred())
		Expect(mb).NotTo(BeNil())
		Expect(mb.Hash).To(Equal(base))
	})
})

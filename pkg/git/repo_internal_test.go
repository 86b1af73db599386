package git

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CreateBranchRef fallback", func() {
	var (
		dir  string
		repo *Repo
		head plumbing.Hash
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		repo, err = Init(dir, "main", DefaultSignature)
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(dir, "0001-user.md"), []byte("hi"), 0o644)).To(Succeed())
		head, err = repo.CommitFiles("Message #1: user", "0001-user.md")
		Expect(err).NotTo(HaveOccurred())

		repo.setRef = func(*plumbing.Reference) error {
			return errors.New("reference storer unavailable")
		}
	})

	It("writes the loose ref file when the storer fails", func() {
		Expect(repo.CreateBranchRef("team/alt", head)).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, ".git", "refs", "heads", "team", "alt"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(head.String() + "\n"))

		hash, err := repo.BranchHash("team/alt")
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal(head))

		current, err := repo.CurrentBranch()
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(Equal("main"))
	})

	It("reports both failures when the fallback fails too", func() {
		blocker := filepath.Join(dir, ".git", "refs", "heads", "team")
		Expect(os.WriteFile(blocker, []byte("not a directory"), 0o644)).To(Succeed())

		err := repo.CreateBranchRef("team/alt", head)
		Expect(err).To(MatchError(ContainSubstring("reference storer unavailable")))
		Expect(err).To(MatchError(ContainSubstring("fallback")))
	})
})

package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/dotdir"
)

var _ = Describe("dotdir.Manager selection", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	It("returns nil when nothing is selected", func() {
		sel, err := m.LoadSelection(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel).To(BeNil())
	})

	It("round trips a selection", func() {
		Expect(m.SaveSelection(&dotdir.Selection{ConversationID: "team/chat", Branch: "alt"}, tmpDir)).To(Succeed())

		sel, err := m.LoadSelection(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel).To(Equal(&dotdir.Selection{ConversationID: "team/chat", Branch: "alt"}))
	})

	It("rejects empty selections", func() {
		Expect(m.SaveSelection(nil, tmpDir)).NotTo(Succeed())
		Expect(m.SaveSelection(&dotdir.Selection{Branch: "alt"}, tmpDir)).NotTo(Succeed())
	})

	It("reports corrupt selection files", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "selection.json"), []byte("nope"), 0o644)).To(Succeed())
		_, err := m.LoadSelection(tmpDir)
		Expect(err).To(HaveOccurred())
	})

	It("clears the selection", func() {
		Expect(m.SaveSelection(&dotdir.Selection{ConversationID: "c"}, tmpDir)).To(Succeed())
		Expect(m.ClearSelection(tmpDir)).To(Succeed())
		Expect(m.ClearSelection(tmpDir)).To(Succeed())

		sel, err := m.LoadSelection(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel).To(BeNil())
	})
})

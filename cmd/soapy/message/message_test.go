package messagecmder

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

var _ = Describe("NewMessageCmd", func() {
	It("has an add subcommand", func() {
		cmd := NewMessageCmd()
		add, _, err := cmd.Find([]string{"add"})
		Expect(err).NotTo(HaveOccurred())
		Expect(add.Name()).To(Equal("add"))
		Expect(add.Flags().Lookup("role").DefValue).To(Equal("user"))
	})

	It("requires content", func() {
		add := newAddCmd()
		Expect(add.Args(add, []string{})).To(HaveOccurred())
	})
})

var _ = Describe("readContent", func() {
	It("joins arguments", func() {
		content, err := readContent(strings.NewReader("ignored"), []string{"hello", "world"})
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("hello world"))
	})

	It("reads stdin for a single dash", func() {
		content, err := readContent(strings.NewReader("line one\nline two\n\n"), []string{"-"})
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("line one\nline two"))
	})
})

var _ = Describe("loadAttachment", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("encodes the file and detects its type", func() {
		path := filepath.Join(dir, "notes.txt")
		Expect(os.WriteFile(path, []byte("hello"), 0o644)).To(Succeed())

		a, err := loadAttachment(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Filename).To(Equal("notes.txt"))
		Expect(a.ContentType).To(HavePrefix("text/plain"))
		Expect(a.Size).To(Equal(int64(5)))
		Expect(a.Data).To(Equal(base64.StdEncoding.EncodeToString([]byte("hello"))))
	})

	It("falls back to octet-stream", func() {
		path := filepath.Join(dir, "blob.soapyunknown")
		Expect(os.WriteFile(path, []byte{1, 2, 3}, 0o644)).To(Succeed())

		a, err := loadAttachment(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.ContentType).To(Equal("application/octet-stream"))
	})

	It("rejects missing and empty files", func() {
		_, err := loadAttachment(filepath.Join(dir, "missing.txt"))
		Expect(err).To(HaveOccurred())

		path := filepath.Join(dir, "empty.txt")
		Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())
		_, err = loadAttachment(path)
		Expect(err).To(MatchError(ContainSubstring("attachment is empty")))
	})
})

var _ = Describe("PrintCommit", func() {
	It("prints the sequence number and a short hash", func() {
		var buf bytes.Buffer
		PrintCommit(&buf, "message", &conversation.CommitResult{
			SequenceNumber: 7,
			CommitHash:     "0123456789abcdef",
		})
		Expect(buf.String()).To(ContainSubstring("Committed message"))
		Expect(buf.String()).To(ContainSubstring("#7"))
		Expect(buf.String()).To(ContainSubstring("01234567"))
		Expect(buf.String()).NotTo(ContainSubstring("0123456789"))
	})
})

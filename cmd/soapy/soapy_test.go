package soapycmder_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	soapycmder "github.com/papercomputeco/soapy/cmd/soapy"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/dotdir"
)

// soapy executes the root command against configDir and returns its output.
func soapy(configDir string, stdin string, args ...string) (string, error) {
	cmd := soapycmder.NewSoapyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config-dir", configDir))
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewSoapyCmd", func() {
	It("registers every subcommand", func() {
		cmd := soapycmder.NewSoapyCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"init", "config", "conversation", "use", "message",
			"tool", "branch", "tail", "serve", "status", "version",
		))
	})

	It("has the global flags", func() {
		cmd := soapycmder.NewSoapyCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})

var _ = Describe("Conversation workflow", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
	})

	run := func(args ...string) string {
		out, err := soapy(configDir, "", args...)
		ExpectWithOffset(1, err).NotTo(HaveOccurred(), out)
		return out
	}

	It("creates, appends, branches and shows a conversation", func() {
		out := run("conversation", "create", "demo", "--owner", "alice")
		Expect(out).To(ContainSubstring("Created conversation"))
		Expect(out).To(ContainSubstring(filepath.Join(configDir, "conversations", "default", "demo")))

		sel, err := dotdir.NewManager().LoadSelection(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.ConversationID).To(Equal("demo"))

		Expect(run("message", "add", "hello", "world")).To(ContainSubstring("#1"))
		Expect(run("message", "add", "--role", "assistant", "--model", "gpt-4o", "hi there")).To(ContainSubstring("#2"))
		Expect(run("tool", "call", "search", "-p", "q=go", "-p", "limit=3")).To(ContainSubstring("#3"))
		Expect(run("tool", "result", "3", "--result", `{"hits":1}`)).To(ContainSubstring("#4"))

		out = run("conversation", "show", "--oneline")
		Expect(out).To(ContainSubstring("hello world"))
		Expect(out).To(ContainSubstring("search"))
		Expect(out).To(ContainSubstring("hits"))

		Expect(run("branch", "create", "alt", "--from", "2")).To(ContainSubstring("refs/heads/alt"))
		Expect(run("message", "add", "--branch", "alt", "retry")).To(ContainSubstring("#3"))

		out = run("branch", "list")
		Expect(out).To(ContainSubstring("alt"))
		Expect(out).To(ContainSubstring("from #2"))

		out = run("conversation", "show", "--branch", "alt", "--oneline")
		Expect(out).To(ContainSubstring("retry"))
		Expect(out).NotTo(ContainSubstring("search"))

		out = run("conversation", "show", "--branch", "main", "--oneline")
		Expect(out).To(ContainSubstring("search"))
		Expect(out).NotTo(ContainSubstring("retry"))
	})

	It("appends to the selected branch", func() {
		run("conversation", "create", "demo")
		run("message", "add", "one")
		run("branch", "create", "alt")

		Expect(run("use", "demo", "--branch", "alt")).To(ContainSubstring("on branch"))
		Expect(run("message", "add", "two")).To(ContainSubstring("#2"))

		out := run("conversation", "show", "--branch", "alt", "--oneline")
		Expect(out).To(ContainSubstring("two"))

		out = run("conversation", "show", "--branch", "main", "--oneline")
		Expect(out).NotTo(ContainSubstring("two"))
	})

	It("reads message content from stdin", func() {
		run("conversation", "create", "demo")

		out, err := soapy(configDir, "from a pipe\n", "message", "add", "-")
		Expect(err).NotTo(HaveOccurred(), out)

		Expect(run("conversation", "show", "--oneline")).To(ContainSubstring("from a pipe"))
	})

	It("stores attachments", func() {
		run("conversation", "create", "demo")

		path := filepath.Join(GinkgoT().TempDir(), "notes.txt")
		Expect(os.WriteFile(path, []byte("attached"), 0o644)).To(Succeed())

		run("message", "add", "--attach", path, "see notes")

		_, err := os.Stat(filepath.Join(configDir, "conversations", "default", "demo", "files", "notes.txt"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("protects the main branch", func() {
		run("conversation", "create", "demo")
		run("message", "add", "one")

		_, err := soapy(configDir, "", "branch", "delete", "main")
		Expect(err).To(HaveOccurred())
	})

	It("deletes a branch", func() {
		run("conversation", "create", "demo")
		run("message", "add", "one")
		run("branch", "create", "alt")

		run("branch", "delete", "alt")
		Expect(run("branch", "list")).To(ContainSubstring("No branches"))
	})

	It("marks the selected conversation in the list", func() {
		run("conversation", "create", "first")
		run("conversation", "create", "second", "--no-select")

		out := run("conversation", "list")
		Expect(out).To(ContainSubstring("second"))
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "first") {
				Expect(line).To(HavePrefix("*"))
			}
			if strings.Contains(line, "second") {
				Expect(line).To(HavePrefix(" "))
			}
		}
	})

	It("clears the selection when the selected conversation is deleted", func() {
		run("conversation", "create", "demo")
		run("conversation", "delete", "demo")

		sel, err := dotdir.NewManager().LoadSelection(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel).To(BeNil())

		_, err = soapy(configDir, "", "message", "add", "orphan")
		Expect(err).To(MatchError(ContainSubstring("no conversation selected")))
	})

	It("rejects selecting an unknown conversation", func() {
		_, err := soapy(configDir, "", "use", "missing")
		Expect(err).To(MatchError(ContainSubstring("conversation not found")))
	})

	It("rejects selecting an unknown branch", func() {
		run("conversation", "create", "demo")
		run("message", "add", "one")

		_, err := soapy(configDir, "", "use", "demo", "--branch", "nope")
		Expect(err).To(HaveOccurred())
	})

	It("clears the selection on use --clear", func() {
		run("conversation", "create", "demo")
		Expect(run("use", "--clear")).To(ContainSubstring("Selection cleared"))

		sel, err := dotdir.NewManager().LoadSelection(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel).To(BeNil())
	})

	It("rejects invalid messages before opening the store", func() {
		run("conversation", "create", "demo")

		_, err := soapy(configDir, "", "message", "add", "--role", "robot", "beep")
		Expect(err).To(HaveOccurred())
	})

	It("prints the latest items with tail --once", func() {
		run("conversation", "create", "demo")
		run("message", "add", "first")
		run("message", "add", "second")

		out := run("tail", "--once", "-n", "1")
		Expect(out).To(ContainSubstring("second"))
		Expect(out).NotTo(ContainSubstring("first"))
	})

	It("honors the base path from config", func() {
		base := GinkgoT().TempDir()
		run("config", "set", "storage.base_path", base)
		run("conversation", "create", "demo")

		_, err := os.Stat(filepath.Join(base, "default", "demo", ".git"))
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Status command", func() {
	var (
		configDir string
		server    *httptest.Server
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ping" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("reports no selection", func() {
		out, err := soapy(configDir, "", "status", "--api-target", server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No conversation selected"))
		Expect(out).To(ContainSubstring(cliui.SuccessMark))
	})

	It("reports the selection and item count", func() {
		_, err := soapy(configDir, "", "conversation", "create", "demo")
		Expect(err).NotTo(HaveOccurred())
		_, err = soapy(configDir, "", "message", "add", "hello")
		Expect(err).NotTo(HaveOccurred())

		out, err := soapy(configDir, "", "status", "--api-target", server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("demo"))
		Expect(out).To(ContainSubstring("Items:"))
		Expect(out).To(ContainSubstring("1"))
	})

	It("marks an unreachable API", func() {
		url := server.URL
		server.Close()

		out, err := soapy(configDir, "", "status", "--api-target", url)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(cliui.FailMark))
	})
})

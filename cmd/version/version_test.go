package versioncmder

import (
	"bytes"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	execute := func(args ...string) string {
		cmd := NewVersionCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		Expect(cmd.Execute()).To(Succeed())
		return out.String()
	}

	It("prints the build details", func() {
		out := execute()
		Expect(out).To(ContainSubstring("Version:"))
		Expect(out).To(ContainSubstring(utils.Version))
		Expect(out).To(ContainSubstring(utils.Sha))
		Expect(out).To(ContainSubstring(runtime.Version()))
		Expect(out).To(ContainSubstring(runtime.GOOS + "/" + runtime.GOARCH))
	})

	It("prints one line with --short", func() {
		Expect(execute("--short")).To(Equal(utils.BuildInfo() + "\n"))
	})

	It("rejects arguments", func() {
		cmd := NewVersionCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})
})

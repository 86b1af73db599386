package gitrepo_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/storage/gitrepo"
)

var _ = Describe("Resolver", func() {
	r := gitrepo.NewResolver("/base")

	DescribeTable("Resolve",
		func(id, want string) {
			Expect(r.Resolve(id)).To(Equal(filepath.FromSlash(want)))
		},
		Entry("plain id", "c1", "/base/default/c1"),
		Entry("namespaced id", "team/c1", "/base/team/c1"),
		Entry("leading slash", "/c1", "/base/default/c1"),
		Entry("trailing slash", "team/", "/base/default/team"),
	)

	DescribeTable("ValidateID",
		func(id string, valid bool) {
			if valid {
				Expect(gitrepo.ValidateID(id)).To(Succeed())
			} else {
				Expect(gitrepo.ValidateID(id)).NotTo(Succeed())
			}
		},
		Entry("plain", "c1", true),
		Entry("namespaced", "team/c-1.v2", true),
		Entry("nested path", "team/a/b", false),
		Entry("dot dot", "team/a..b", false),
		Entry("parent dir", "..", false),
		Entry("hidden", ".git", false),
		Entry("empty", "", false),
	)
})

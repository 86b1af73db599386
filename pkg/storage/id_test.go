package storage_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/storage"
)

var _ = Describe("conversation ids", func() {
	DescribeTable("SplitID, JoinID and CanonicalID",
		func(id, ns, local, canonical string) {
			gotNS, gotLocal := storage.SplitID(id)
			Expect(gotNS).To(Equal(ns))
			Expect(gotLocal).To(Equal(local))
			Expect(storage.JoinID(gotNS, gotLocal)).To(Equal(canonical))
			Expect(storage.CanonicalID(id)).To(Equal(canonical))
		},
		Entry("no namespace", "c1", storage.DefaultNamespace, "c1", "c1"),
		Entry("namespace", "team/chat", "team", "chat", "team/chat"),
		Entry("explicit default", "default/c1", storage.DefaultNamespace, "c1", "c1"),
		Entry("leading slash", "/chat", storage.DefaultNamespace, "/chat", "/chat"),
		Entry("trailing slash", "team/", storage.DefaultNamespace, "team/", "team/"),
	)
})

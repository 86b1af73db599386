package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildInfo", func() {
	It("names the version, commit and build time", func() {
		Expect(BuildInfo()).To(Equal("soapy " + Version + " (" + ShortHash(Sha) + ", built " + Buildtime + ")"))
	})
})

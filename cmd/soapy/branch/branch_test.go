package branchcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	branchcmder "github.com/papercomputeco/soapy/cmd/soapy/branch"
)

var _ = Describe("NewBranchCmd", func() {
	It("has create, list and delete subcommands", func() {
		cmd := branchcmder.NewBranchCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("create", "list", "delete"))
	})

	It("shares the conversation flag", func() {
		cmd := branchcmder.NewBranchCmd()
		for _, sub := range cmd.Commands() {
			Expect(sub.Flags().Lookup("conversation")).NotTo(BeNil(), sub.Name())
			Expect(sub.Flags().Lookup("base-path")).NotTo(BeNil(), sub.Name())
		}
	})

	It("takes a branch name for create and delete", func() {
		cmd := branchcmder.NewBranchCmd()
		create, _, err := cmd.Find([]string{"create"})
		Expect(err).NotTo(HaveOccurred())
		Expect(create.Args(create, []string{})).NotTo(Succeed())
		Expect(create.Args(create, []string{"alt"})).To(Succeed())
		Expect(create.Flags().Lookup("from").DefValue).To(Equal("0"))
	})
})

package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/api/mcp"
	"github.com/papercomputeco/soapy/pkg/logger"
	"github.com/papercomputeco/soapy/pkg/storage/inmemory"
)

var _ = Describe("NewServer", func() {
	DescribeTable("config validation",
		func(cfg func() mcp.Config, wantErr string) {
			s, err := mcp.NewServer(cfg())
			if wantErr != "" {
				Expect(err).To(MatchError(ContainSubstring(wantErr)))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Handler()).NotTo(BeNil())
		},
		Entry("driver and logger", func() mcp.Config {
			return mcp.Config{Driver: inmemory.NewDriver(), Logger: logger.Nop()}
		}, ""),
		Entry("missing driver", func() mcp.Config {
			return mcp.Config{Logger: logger.Nop()}
		}, "storage driver is required"),
		Entry("missing logger", func() mcp.Config {
			return mcp.Config{Driver: inmemory.NewDriver()}
		}, "logger is required"),
		Entry("noop needs neither", func() mcp.Config {
			return mcp.Config{Noop: true}
		}, ""),
	)
})

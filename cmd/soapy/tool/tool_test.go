package toolcmder

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewToolCmd", func() {
	It("has call and result subcommands", func() {
		cmd := NewToolCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("call", "result"))
	})

	It("rejects a non numeric tool call reference", func() {
		cmd := NewToolCmd()
		cmd.SetArgs([]string{"result", "abc", "--config-dir", GinkgoT().TempDir()})
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		err := cmd.Execute()
		Expect(err).To(MatchError(ContainSubstring("invalid tool call sequence number")))
	})
})

var _ = Describe("parseParams", func() {
	It("returns an empty map without input", func() {
		params, err := parseParams("", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(params).To(BeEmpty())
	})

	It("keeps JSON types of pair values", func() {
		params, err := parseParams("", []string{"q=go", "limit=3", "exact=true", "tags=[\"a\"]"})
		Expect(err).NotTo(HaveOccurred())
		Expect(params).To(HaveKeyWithValue("q", "go"))
		Expect(params).To(HaveKeyWithValue("limit", float64(3)))
		Expect(params).To(HaveKeyWithValue("exact", true))
		Expect(params).To(HaveKeyWithValue("tags", []any{"a"}))
	})

	It("keeps = signs in values", func() {
		params, err := parseParams("", []string{"expr=a=b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(params).To(HaveKeyWithValue("expr", "a=b"))
	})

	It("lets pairs override the JSON object", func() {
		params, err := parseParams(`{"q":"rust","page":2}`, []string{"q=go"})
		Expect(err).NotTo(HaveOccurred())
		Expect(params).To(HaveKeyWithValue("q", "go"))
		Expect(params).To(HaveKeyWithValue("page", float64(2)))
	})

	It("rejects malformed input", func() {
		_, err := parseParams(`[1,2]`, nil)
		Expect(err).To(MatchError(ContainSubstring("parsing --params")))

		_, err = parseParams("", []string{"novalue"})
		Expect(err).To(MatchError(ContainSubstring("expected key=value")))

		_, err = parseParams("", []string{"=x"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("resultPayload", func() {
	It("is empty without input", func() {
		payload, err := resultPayload("")
		Expect(err).NotTo(HaveOccurred())
		Expect(payload).To(BeNil())
	})

	It("keeps valid JSON", func() {
		payload, err := resultPayload(`{"ok":true}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(Equal(`{"ok":true}`))
	})

	It("quotes plain text", func() {
		payload, err := resultPayload("it worked")
		Expect(err).NotTo(HaveOccurred())

		var s string
		Expect(json.Unmarshal(payload, &s)).To(Succeed())
		Expect(s).To(Equal("it worked"))
	})
})

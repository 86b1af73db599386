package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/soapy/pkg/logger"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// decode parses the single JSON record in buf.
func decode(buf *bytes.Buffer) map[string]any {
	var rec map[string]any
	ExpectWithOffset(1, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec)).To(Succeed())
	return rec
}

var _ = Describe("New", func() {
	DescribeTable("level filtering",
		func(opts []logger.Option, debugShown bool) {
			var buf bytes.Buffer
			l := logger.New(append(opts, logger.WithWriter(&buf))...)
			l.Debug("resolving conversation")
			l.Info("committed item")

			Expect(buf.String()).To(ContainSubstring("committed item"))
			if debugShown {
				Expect(buf.String()).To(ContainSubstring("resolving conversation"))
			} else {
				Expect(buf.String()).NotTo(ContainSubstring("resolving conversation"))
			}
		},
		Entry("text default", nil, false),
		Entry("text debug", []logger.Option{logger.WithDebug(true)}, true),
		Entry("json debug", []logger.Option{logger.WithJSON(true), logger.WithDebug(true)}, true),
		Entry("pretty default", []logger.Option{logger.WithPretty(true)}, false),
		Entry("pretty debug", []logger.Option{logger.WithPretty(true), logger.WithDebug(true)}, true),
	)

	It("filters below an explicit level", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
		l.Info("hidden")
		l.Warn("skipped corrupt item file")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("skipped corrupt item file"))
	})

	It("writes structured JSON with bound fields and groups", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.With("conversation", "team/c1").WithGroup("item").Info("committed", "seq", 4)

		rec := decode(&buf)
		Expect(rec["msg"]).To(Equal("committed"))
		Expect(rec["conversation"]).To(Equal("team/c1"))
		Expect(rec["item"]).To(HaveKeyWithValue("seq", BeNumerically("==", 4)))
	})

	It("writes to every writer and ignores nil ones", func() {
		var a, b bytes.Buffer
		logger.New(logger.WithWriters(&a, nil, &b)).Info("branch created")

		Expect(a.String()).To(ContainSubstring("branch created"))
		Expect(b.String()).To(ContainSubstring("branch created"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled and safe to use", func() {
		l := logger.Nop()
		Expect(l.Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		Expect(func() {
			l.With("k", "v").WithGroup("g").Error("ignored")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("fans out records, bound fields and groups", func() {
		var a, b bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			nil,
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		)
		multi.With("component", "api").WithGroup("request").Info("handled", "method", "POST")

		for _, buf := range []*bytes.Buffer{&a, &b} {
			rec := decode(buf)
			Expect(rec["component"]).To(Equal("api"))
			Expect(rec["request"]).To(HaveKeyWithValue("method", "POST"))
		}
	})

	It("keeps writing after one destination fails", func() {
		var buf bytes.Buffer
		broken := logger.New(logger.WithWriter(failingWriter{}))
		healthy := logger.New(logger.WithWriter(&buf))

		err := logger.Multi(broken, healthy).Handler().Handle(context.Background(),
			slog.NewRecord(time.Now(), slog.LevelInfo, "committed item", 0))
		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(buf.String()).To(ContainSubstring("committed item"))
	})

	It("is enabled when any destination is", func() {
		var buf bytes.Buffer
		multi := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&buf), logger.WithDebug(true)))

		Expect(multi.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		multi.Debug("checked out branch", "branch", "alt")
		Expect(buf.String()).To(ContainSubstring("checked out branch"))
	})
})

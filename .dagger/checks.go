package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/soapy/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (s *Soapy) CheckGoModTidy(ctx context.Context) (string, error) {
	script := `set -e
cp go.mod /tmp/go.mod
cp go.sum /tmp/go.sum 2>/dev/null || touch /tmp/go.sum
go mod tidy
diff -u /tmp/go.mod go.mod
diff -u /tmp/go.sum go.sum
echo tidy`

	out, err := s.goContainer().WithExec([]string{"sh", "-c", script}).Stdout(ctx)

	var execErr *dagger.ExecError
	switch {
	case errors.As(err, &execErr):
		return "", fmt.Errorf("go.mod or go.sum need \"go mod tidy\":\n\n%s", execErr.Stdout)
	case err != nil:
		return "", err
	}
	return out, nil
}

func (s *Soapy) linter() *dagger.Golangcilint {
	base := s.goContainer().WithExec([]string{
		"go", "install",
		"github.com/golangci/golangci-lint/v2/cmd/golangci-lint@" + golangciLintVersion,
	})
	return dag.Golangcilint(s.Source, dagger.GolangcilintOpts{BaseCtr: base})
}

// CheckLint runs golangci-lint with its default linters.
//
// +check
func (s *Soapy) CheckLint(ctx context.Context) (string, error) {
	return s.linter().Check(ctx)
}

// FixLint runs golangci-lint --fix and returns the fixed source.
func (s *Soapy) FixLint() *dagger.Directory {
	return s.linter().Lint()
}

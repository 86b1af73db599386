// Soapy CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/soapy/internal/dagger"
)

// Soapy is the CI/CD pipeline of the soapy conversation store
type Soapy struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Soapy CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", ".soapy"]
	source *dagger.Directory,
) *Soapy {
	return &Soapy{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted.
// CGO is enabled only for the race detector; the binaries are pure Go.
func (s *Soapy) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the unit tests via "go test"
func (s *Soapy) Test(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

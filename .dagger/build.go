package main

import (
	"strings"
	"time"

	"dagger/soapy/internal/dagger"
)

const (
	mainPackage = "./cli/soapy"
	utilsPkg    = "github.com/papercomputeco/soapy/pkg/utils"
)

type platform struct {
	os, arch string
}

func (p platform) dir() string {
	return p.os + "/" + p.arch + "/"
}

var releasePlatforms = []platform{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
}

// Build cross compiles soapy for every release platform. The returned
// directory holds one <os>/<arch>/soapy binary per platform.
func (s *Soapy) Build(
	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	builder := dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", s.Source).
		WithWorkdir("/src")

	out := dag.Directory()
	for _, p := range releasePlatforms {
		bin := builder.
			WithEnvVariable("GOOS", p.os).
			WithEnvVariable("GOARCH", p.arch).
			WithExec([]string{"go", "build", "-trimpath", "-ldflags", ldflags, "-o", p.dir(), mainPackage}).
			Directory(p.dir())
		out = out.WithDirectory(p.dir(), bin)
	}
	return out
}

// BuildRelease is Build with version, commit and build time stamped into
// the binary.
func (s *Soapy) BuildRelease(
	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	vars := map[string]string{
		"Version":   version,
		"Sha":       commit,
		"Buildtime": time.Now().UTC().Format(time.RFC3339),
	}

	flags := []string{"-s", "-w"}
	for name, value := range vars {
		flags = append(flags, "-X '"+utilsPkg+"."+name+"="+value+"'")
	}
	return s.Build(strings.Join(flags, " "))
}

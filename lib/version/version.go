// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/bureau-foundation/folderize/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version.
	Version = "0.1.0-dev"
)

// vcs is the revision and dirty flag from the binary's build info.
var vcs = sync.OnceValue(func() buildVCS {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildVCS{}
	}
	return vcsFromSettings(info.Settings)
})

type buildVCS struct {
	revision string
	modified bool
}

func vcsFromSettings(settings []debug.BuildSetting) buildVCS {
	var result buildVCS
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			result.revision = setting.Value
			if len(result.revision) > 7 {
				result.revision = result.revision[:7]
			}
		case "vcs.modified":
			result.modified = setting.Value == "true"
		}
	}
	return result
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitCommit == "unknown" && vcs().modified {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, Commit(), dirty, BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Commit returns the git commit SHA, falling back to the revision in
// the binary's build info.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if revision := vcs().revision; revision != "" {
		return revision
	}
	return GitCommit
}

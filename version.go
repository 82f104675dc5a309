package gotlres

import (
	"runtime/debug"
	"sync"
)

const (
	// Name is the library and CLI name.
	Name = "gotlres"

	// Description is the one-line summary shown by the CLI.
	Description = "Localization resource cache with lazy module loading and fallback resolution"

	// Version is the semantic version.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/gotlres"

	// License is the software license.
	License = "MIT"
)

// GitCommit and BuildDate may be stamped with
//
//	go build -ldflags "-X github.com/ZaguanLabs/gotlres.GitCommit=$(git rev-parse HEAD)"
//
// When left empty they are read from the VCS information the Go toolchain
// embeds in the binary.
var (
	GitCommit string
	BuildDate string
)

// BuildInfo describes the running build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

var (
	vcsOnce sync.Once
	vcsInfo BuildInfo
)

// ReadBuildInfo returns the build metadata. Values stamped with -ldflags take
// precedence over embedded VCS settings.
func ReadBuildInfo() BuildInfo {
	vcsOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		vcsInfo.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				vcsInfo.Commit = s.Value
			case "vcs.time":
				vcsInfo.Date = s.Value
			case "vcs.modified":
				vcsInfo.Modified = s.Value == "true"
			}
		}
	})

	info := vcsInfo
	info.Version = Version
	if GitCommit != "" {
		info.Commit, info.Modified = GitCommit, false
	}
	if BuildDate != "" {
		info.Date = BuildDate
	}
	return info
}

// ShortCommit is the first seven characters of the commit, or "".
func (b BuildInfo) ShortCommit() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}

// String renders the version as semver build metadata, e.g. 0.1.0+abc1234.dirty.
func (b BuildInfo) String() string {
	v := b.Version
	if c := b.ShortCommit(); c != "" {
		v += "+" + c
		if b.Modified {
			v += ".dirty"
		}
	}
	return v
}

// FullVersion returns ReadBuildInfo().String().
func FullVersion() string {
	return ReadBuildInfo().String()
}

// UserAgent identifies gotlres to remote bundle sources and in exported
// snapshots.
func UserAgent() string {
	return Name + "/" + Version + " (+" + Repository + ")"
}

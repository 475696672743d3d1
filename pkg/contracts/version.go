package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version of nominacli.
const Version = "0.3.0"

// ExportFormatVersion versions the column layout of exported files. Bump it
// whenever a column is added, removed or renamed.
const ExportFormatVersion = "v1"

// Set with -ldflags "-X nominacli/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	ExportFormat string `json:"export_format"`
}

// Build returns the binary's build information. When GitCommit was not
// injected it falls back to the VCS revision stamped by the go tool.
func Build() BuildInfo {
	info := BuildInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		ExportFormat: ExportFormatVersion,
	}
	if info.GitCommit == "unknown" {
		if rev := vcsRevision(); rev != "" {
			info.GitCommit = rev
		}
	}
	return info
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// GetVersionString returns "nominacli v<version>".
func GetVersionString() string {
	return "nominacli v" + Version
}

// GetFullVersionString adds commit, build time and toolchain to
// GetVersionString.
func GetFullVersionString() string {
	b := Build()
	return fmt.Sprintf("%s (commit %s, built %s, %s %s, export format %s)",
		GetVersionString(), b.GitCommit, b.BuildTime, b.GoVersion, b.Platform, b.ExportFormat)
}

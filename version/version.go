package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/kbukum/through2/logger"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date,omitempty"`
	Dirty     bool      `json:"dirty"`
}

// Get returns the build information, preferring link-time values over the
// embedded VCS stamps.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, GitBranch: GitBranch}
	if BuildTime != "" {
		info.BuildDate, _ = time.Parse(time.RFC3339, BuildTime)
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildDate.IsZero() {
				info.BuildDate, _ = time.Parse(time.RFC3339, s.Value)
			}
		}
	}
	return info
}

// IsRelease reports whether the build carries a release version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty
}

// Short returns the version and abbreviated commit, e.g. "1.2.0-abc1234".
func (i Info) Short() string {
	commit := i.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	parts := []string{i.Version}
	if commit != "" {
		parts = append(parts, commit)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String returns Short followed by the branch and build date when known.
func (i Info) String() string {
	s := i.Short()
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		s += " (" + i.GitBranch + ")"
	}
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" built %s", i.BuildDate.UTC().Format(time.RFC3339))
	}
	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}
	return s
}

// Fields returns the build information as log fields.
func (i Info) Fields() map[string]interface{} {
	return logger.Fields(
		"version", i.Version,
		"commit", i.GitCommit,
		"go_version", i.GoVersion,
		"release", i.IsRelease(),
	)
}

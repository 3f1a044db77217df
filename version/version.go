// Package version reports which build of medusa-stacktraces is running. Values set through ldflags take precedence
// over the VCS settings the Go toolchain records in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

// Release builds override these with -ldflags "-X github.com/crytic/medusa-stacktraces/version.<Name>=<value>".
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// GitCommit is the full revision hash the binary was built from.
	GitCommit = ""
	// GitCommitTime is the RFC 3339 commit time of GitCommit.
	GitCommitTime = ""
	// GitTreeDirty is "true" when the working tree had uncommitted changes.
	GitTreeDirty = ""
)

// shortRevisionLength is the number of revision characters shown in version strings.
const shortRevisionLength = 7

// Info describes a build of the tool.
type Info struct {
	// Version is the semantic version.
	Version string
	// Revision is the VCS revision, or empty if unknown.
	Revision string
	// CommitTime is the time of Revision, or the zero time if unknown.
	CommitTime time.Time
	// Modified reports uncommitted changes at build time.
	Modified bool
	// GoVersion is the toolchain which compiled the binary.
	GoVersion string
}

// GetInfo returns the version information of the running binary.
func GetInfo() Info {
	buildInfo, _ := debug.ReadBuildInfo()
	return resolveInfo(buildInfo)
}

// resolveInfo merges the ldflags variables with the VCS settings of buildInfo, which may be nil.
func resolveInfo(buildInfo *debug.BuildInfo) Info {
	settings := make(map[string]string)
	if buildInfo != nil {
		for _, setting := range buildInfo.Settings {
			settings[setting.Key] = setting.Value
		}
	}
	pick := func(override string, key string) string {
		if override != "" {
			return override
		}
		return settings[key]
	}

	info := Info{
		Version:   Version,
		Revision:  pick(GitCommit, "vcs.revision"),
		GoVersion: runtime.Version(),
	}
	if commitTime, err := time.Parse(time.RFC3339, pick(GitCommitTime, "vcs.time")); err == nil {
		info.CommitTime = commitTime.UTC()
	}
	info.Modified, _ = strconv.ParseBool(pick(GitTreeDirty, "vcs.modified"))
	return info
}

// revision returns the shortened revision with a "-dirty" suffix for modified trees, or an empty string if the
// revision is unknown.
func (i Info) revision() string {
	if i.Revision == "" {
		return ""
	}
	revision := i.Revision
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if i.Modified {
		revision += "-dirty"
	}
	return revision
}

// String returns the multi-line output of the version command.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "medusa-stacktraces version %s\n", i.Version)
	if revision := i.revision(); revision != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", revision)
	}
	if !i.CommitTime.IsZero() {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.CommitTime.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}

// Short returns the single-line form used by --version, e.g. "0.1.0+0123456-dirty".
func (i Info) Short() string {
	if revision := i.revision(); revision != "" {
		return i.Version + "+" + revision
	}
	return i.Version
}

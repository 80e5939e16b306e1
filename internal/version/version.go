// Package version reports build provenance for the running binary, and
// backs the "latestVersion"/"version" fields of the info event.
package version

import "runtime/debug"

var (
	GitRepo   string
	GitBranch string
	GitCommit string
	BuildTime string
)

type Info struct {
	GitRepo   string           `json:"gitRepo,omitempty"`
	GitBranch string           `json:"gitBranch,omitempty"`
	GitCommit string           `json:"gitCommit,omitempty"`
	BuildTime string           `json:"buildTime,omitempty"`
	BuildInfo *debug.BuildInfo `json:"buildInfo,omitempty"`
}

func Get() Info {
	buildInfo, ok := debug.ReadBuildInfo()
	ret := Info{
		GitRepo:   GitRepo,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if ok {
		ret.BuildInfo = buildInfo
	}
	return ret
}

// Equal reports whether two version infos describe the same build.
func (v Info) Equal(other Info) bool {
	if v.BuildInfo != nil {
		if other.BuildInfo == nil {
			return false
		}
		if v.BuildInfo.Main.Path != other.BuildInfo.Main.Path ||
			v.BuildInfo.GoVersion != other.BuildInfo.GoVersion ||
			!depsEqual(v.BuildInfo.Deps, other.BuildInfo.Deps) {
			return false
		}
	} else if other.BuildInfo != nil {
		return false
	}
	return v.BuildTime == other.BuildTime &&
		v.GitBranch == other.GitBranch &&
		v.GitCommit == other.GitCommit &&
		v.GitRepo == other.GitRepo
}

func depsEqual(a, b []*debug.Module) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if a[i].Path != b[i].Path || a[i].Version != b[i].Version {
			return false
		}
	}
	return true
}

package version

import (
	"fmt"
	"runtime/debug"
)

// Build variables set with ldflags, e.g.
// -X 'github.com/compozy/flowdoc/pkg/version.Version=v0.3.0'
var (
	Version    = ""
	CommitHash = ""
	BuildDate  = ""
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

// Get returns the build information, falling back to the module build info embedded
// by go install when ldflags were not set.
func Get() Info {
	info := Info{Version: Version, CommitHash: CommitHash, BuildDate: BuildDate}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fillFromBuildInfo(info, bi)
	}
	return withUnknown(info)
}

func fillFromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.CommitHash == "":
			info.CommitHash = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "":
			info.BuildDate = s.Value
		}
	}
	return info
}

func withUnknown(info Info) Info {
	for _, field := range []*string{&info.Version, &info.CommitHash, &info.BuildDate} {
		if *field == "" {
			*field = "unknown"
		}
	}
	return info
}

// String renders the information on one line.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildDate)
}

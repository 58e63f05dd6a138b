package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillFromBuildInfo(t *testing.T) {
	t.Run("Should prefer ldflags values", func(t *testing.T) {
		bi := &debug.BuildInfo{
			Main:     debug.Module{Version: "v0.9.0"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
		}
		info := fillFromBuildInfo(Info{Version: "v1.0.0", CommitHash: "def"}, bi)
		assert.Equal(t, "v1.0.0", info.Version)
		assert.Equal(t, "def", info.CommitHash)
	})

	t.Run("Should use module and vcs settings when ldflags are empty", func(t *testing.T) {
		bi := &debug.BuildInfo{
			Main: debug.Module{Version: "v0.9.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			},
		}
		info := fillFromBuildInfo(Info{}, bi)
		assert.Equal(t, Info{Version: "v0.9.0", CommitHash: "abc", BuildDate: "2026-01-02T03:04:05Z"}, info)
	})

	t.Run("Should ignore development builds", func(t *testing.T) {
		info := withUnknown(fillFromBuildInfo(Info{}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}))
		assert.Equal(t, "unknown (commit unknown, built unknown)", info.String())
	})
}

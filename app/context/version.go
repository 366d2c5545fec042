package context

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// VersionInfo is the build version of the application.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

// GetVersion returns the version information embedded in the binary by the Go
// toolchain.
func GetVersion() (*VersionInfo, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("failed reading build information")
	}

	v := &VersionInfo{Semantic: info.Main.Version}
	if v.Semantic == "" || v.Semantic == "(devel)" {
		v.Semantic = "v0.0.0-dev"
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}

	return v, nil
}

// String returns the version in a human readable format.
func (v *VersionInfo) String() string {
	if v.Commit == "" {
		return v.Semantic
	}
	commit := v.Commit[:min(len(v.Commit), 12)]
	if v.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s)", v.Semantic, commit)
}

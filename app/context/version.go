package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo contains the application version and build metadata.
type VersionInfo struct {
	Semantic  string
	GoVersion string
	Revision  string
}

// String returns a human-readable representation of the version information.
func (v *VersionInfo) String() string {
	s := v.Semantic
	if v.Revision != "" {
		s = fmt.Sprintf("%s (%s)", s, v.Revision)
	}
	return s
}

// GetVersion extracts the version information from the build metadata
// embedded in the binary.
func GetVersion() (*VersionInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("failed reading build info")
	}

	v := &VersionInfo{
		Semantic:  bi.Main.Version,
		GoVersion: bi.GoVersion,
	}
	if v.Semantic == "" {
		v.Semantic = "(devel)"
	}
	for _, setting := range bi.Settings {
		if setting.Key == "vcs.revision" {
			rev := setting.Value
			if len(rev) > 8 {
				rev = rev[:8]
			}
			v.Revision = rev
		}
	}

	return v, nil
}

package version

import (
	"runtime/debug"
)

func Get() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unavailable"
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}

	return "unavailable"
}

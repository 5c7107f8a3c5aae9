package context

import "runtime/debug"

// GetVersion returns the application version recorded in the build info.
func GetVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

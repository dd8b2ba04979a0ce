package version

// Version is overridden at build time via -ldflags.
var Version = "dev"

// GetInfo returns the human-readable build version.
func GetInfo() string {
	return Version
}

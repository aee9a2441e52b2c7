package campusbite

// Version information, overridden at build time with -ldflags -X
var (
	// Version is the release version
	Version = "development"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)

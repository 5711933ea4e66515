// Package gnoccur contains application-wide metadata.
package gnoccur

var (
	// Version is the application version. It is set during the build
	// process with ldflags.
	Version = "v0.0.1"

	// Build is the build timestamp. It is set during the build process
	// with ldflags.
	Build = "n/a"
)

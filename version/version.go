// Package version holds build information, overridable with -ldflags -X.
package version

var Version = "0.1.0"
var BuildDate = "2025-02-20"

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

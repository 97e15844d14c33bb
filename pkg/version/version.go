package version

// Version represents the current version of blogsearch
const Version = "1.2.0"

// BuildVersion returns the version string for display
func BuildVersion() string {
	return "blogsearch version " + Version
}

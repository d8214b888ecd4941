package buildconfig

// Set at build time via -ldflags "-X ...=".
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the release version of the engine binary.
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from.
func Commit() string {
	return commit
}

// VersionInfo bundles the build identifiers for status responses.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}

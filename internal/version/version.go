package version

// Version is the current version of frvp.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-frvp/internal/version.Version=0.3.1"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// GetVersion returns the current version of frvp.
func GetVersion() string {
	return Version
}

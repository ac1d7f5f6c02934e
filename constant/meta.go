// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	App = "skipsync"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every request to segment providers.
	UserAgent = App + "/" + Version
)

// Build metadata, set with -ldflags "-X github.com/anisan-cli/skipsync/constant.BuiltAt=...".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

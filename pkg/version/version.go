package version

// Version is the voicekit release. Overridden at build time with
// -ldflags "-X voicekit/pkg/version.Version=...".
var Version = "v0.1.0"

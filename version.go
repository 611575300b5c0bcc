package utm

// Version is the release of the library and the CLI.
// Release builds override it with -ldflags "-X github.com/aretw0/utm.Version=...".
var Version = "0.3.0-dev"

package version

// Version is the current version of the DIV-C binaries.
// This value can be overridden at build time using:
//
//	go build -ldflags="-X 'github.com/rosaguta/DIV-C-Server/internal/version.Version=v1.0.0'"
var Version = "dev"

// Package platform detects the host OS and architecture and maps them to the
// archive naming used by nightly browser builds.
//
// Linux distribution details come from gopsutil with graceful fallback when
// detection fails. The detected information is also injected as a read-only
// table into Lua configurations so they can branch on platform.
package platform

import "context"

// Info contains platform detection information.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // "amd64", "arm64" (normalized GOARCH)
	Machine string // uname-style machine name (e.g. "x86_64", "aarch64")

	Platform string // distro ID (Linux only, e.g. "ubuntu")
	Family   string // distro family (Linux only, e.g. "debian")
	Version  string // distro version (Linux only, e.g. "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

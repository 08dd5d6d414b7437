package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// machineNames maps normalized GOARCH values to uname-style machine names,
// which is what nightly archive file names are built from.
var machineNames = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
}

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns platform information for the current host. OS and
// architecture come from the runtime; on Linux, distribution details come
// from gopsutil. Distro detection failures fall back to OS/arch only, since
// nothing downstream strictly requires them.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	machine, ok := machineNames[runtime.GOARCH]
	if !ok {
		return nil, fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}

	info := &Info{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Machine: machine,
	}

	if runtime.GOOS == "linux" {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}
		info.Platform = platform
		info.Family = family
		info.Version = version
	}

	return info, nil
}

// ArchiveSuffix returns the nightly archive file suffix for the platform:
// a disk image on macOS, a compressed tarball on Linux. Other platforms are
// not supported by the nightly publishing layout.
func ArchiveSuffix(info *Info) (string, error) {
	switch info.OS {
	case "darwin":
		return ".dmg", nil
	case "linux":
		return fmt.Sprintf(".linux-%s.tar.bz2", info.Machine), nil
	default:
		return "", fmt.Errorf("no nightly archives for platform %s", info.OS)
	}
}

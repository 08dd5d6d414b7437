package platform

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	detector := NewDetector()

	info, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", info.Arch, runtime.GOARCH)
	}
	if info.Machine == "" {
		t.Error("Machine should not be empty")
	}
}

func TestDetectCancelledContext(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("distro detection only runs on linux")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector().Detect(ctx)
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestArchiveSuffix(t *testing.T) {
	tests := []struct {
		name    string
		info    Info
		want    string
		wantErr bool
	}{
		{
			name: "darwin",
			info: Info{OS: "darwin", Arch: "arm64", Machine: "aarch64"},
			want: ".dmg",
		},
		{
			name: "linux_amd64",
			info: Info{OS: "linux", Arch: "amd64", Machine: "x86_64"},
			want: ".linux-x86_64.tar.bz2",
		},
		{
			name: "linux_arm64",
			info: Info{OS: "linux", Arch: "arm64", Machine: "aarch64"},
			want: ".linux-aarch64.tar.bz2",
		},
		{
			name:    "windows_unsupported",
			info:    Info{OS: "windows", Arch: "amd64", Machine: "x86_64"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArchiveSuffix(&tt.info)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("suffix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMachineNamesCoverSupportedArches(t *testing.T) {
	for arch, machine := range machineNames {
		if machine == "" {
			t.Errorf("empty machine name for %s", arch)
		}
		if strings.Contains(machine, " ") {
			t.Errorf("machine name %q contains whitespace", machine)
		}
	}
}

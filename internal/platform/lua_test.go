package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: "linux", Arch: "amd64", Machine: "x86_64", Platform: "ubuntu", Family: "debian", Version: "22.04"}
	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("inject: %v", err)
	}

	if err := L.DoString(`
		assert(platform.os == "linux")
		assert(platform.machine == "x86_64")
		assert(platform.is_linux == true)
		assert(platform.is_macos == false)
		assert(platform.distro.id == "ubuntu")
		assert(platform.when(true, "yes") == "yes")
		assert(platform.when(false, "yes") == nil)
	`); err != nil {
		t.Errorf("platform table lookups failed: %v", err)
	}
}

func TestPlatformTableIsReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "darwin", Arch: "arm64", Machine: "aarch64"}); err != nil {
		t.Fatalf("inject: %v", err)
	}

	if err := L.DoString(`platform.os = "windows"`); err == nil {
		t.Error("writing to the platform table should fail")
	}
}

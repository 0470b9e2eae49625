//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestBaudRateToSpeed(t *testing.T) {
	speed, custom, err := baudRateToSpeed(115200)
	if err != nil || custom != 0 || speed != unix.B115200 {
		t.Errorf("115200: speed=%#x custom=%d err=%v", speed, custom, err)
	}

	speed, _, err = baudRateToSpeed(250000)
	if err != nil || speed != 0x1003 {
		t.Errorf("250000: speed=%#x err=%v", speed, err)
	}

	// Arbitrary rates map to BOTHER on Linux.
	speed, _, err = baudRateToSpeed(123456)
	if err != nil || speed&0x1000 == 0 {
		t.Errorf("123456: speed=%#x err=%v", speed, err)
	}
}

func TestResolveDevicePassThrough(t *testing.T) {
	got, err := ResolveDevice("/dev/ttyUSB0")
	if err != nil || got != "/dev/ttyUSB0" {
		t.Errorf("plain device path altered: %q, %v", got, err)
	}
}

func TestIsDeviceAvailableRejectsRegularFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "not-a-tty")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsDeviceAvailable(f) {
		t.Error("regular file reported as serial device")
	}
}

//go:build unix

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// machine returns the kernel's machine hardware name, the same string uname -m prints.
func machine() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return runtime.GOARCH
	}
	m := unix.ByteSliceToString(u.Machine[:])
	if m == "" {
		return runtime.GOARCH
	}
	return m
}

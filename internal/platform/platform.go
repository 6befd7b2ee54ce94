// Package platform resolves the host operating system and CPU architecture
// into the canonical tokens used by the tool catalog.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Operating system tokens.
const (
	Linux = "linux"
	MacOS = "macos"
)

// Architecture tokens.
const (
	X86_64  = "x86_64"
	AArch64 = "aarch64"
)

// Info is the resolved platform of the running host. It is computed once per run.
type Info struct {
	OS   string
	Arch string
}

func (i Info) String() string {
	return i.OS + "/" + i.Arch
}

// UnsupportedPlatformError is returned when the OS type or machine string
// matches none of the recognized values.
type UnsupportedPlatformError struct {
	OSType  string
	Machine string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: os=%q arch=%q", e.OSType, e.Machine)
}

// Detect inspects the host and resolves it.
func Detect() (Info, error) {
	return Resolve(runtime.GOOS, machine())
}

// Resolve maps an OS type string (GOOS or $OSTYPE style, e.g. "linux-gnu",
// "darwin23") and a machine string (uname -m or GOARCH style) to Info.
func Resolve(osType, machine string) (Info, error) {
	osTok := normalizeOS(osType)
	archTok := normalizeArch(machine)
	if osTok == "" || archTok == "" {
		return Info{}, &UnsupportedPlatformError{OSType: osType, Machine: machine}
	}
	return Info{OS: osTok, Arch: archTok}, nil
}

func normalizeOS(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "linux"):
		return Linux
	case strings.HasPrefix(s, "darwin"), s == "macos":
		return MacOS
	}
	return ""
}

func normalizeArch(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x86_64", "amd64":
		return X86_64
	case "arm64", "aarch64":
		return AArch64
	}
	return ""
}

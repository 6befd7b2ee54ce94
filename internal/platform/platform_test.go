package platform

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSupported(t *testing.T) {
	tests := []struct {
		name    string
		osType  string
		machine string
		want    Info
	}{
		{"linux x86_64", "linux", "x86_64", Info{Linux, X86_64}},
		{"linux-gnu amd64", "linux-gnu", "amd64", Info{Linux, X86_64}},
		{"linux aarch64", "linux", "aarch64", Info{Linux, AArch64}},
		{"linux arm64", "linux-musl", "arm64", Info{Linux, AArch64}},
		{"darwin arm64", "darwin", "arm64", Info{MacOS, AArch64}},
		{"darwin23 x86_64", "darwin23", "x86_64", Info{MacOS, X86_64}},
		{"macos uppercase", "MacOS", "ARM64", Info{MacOS, AArch64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.osType, tt.machine)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveArmAliasesAgree(t *testing.T) {
	a, err := Resolve("linux", "arm64")
	require.NoError(t, err)
	b, err := Resolve("linux", "aarch64")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "linux/aarch64", a.String())
}

func TestResolveUnsupported(t *testing.T) {
	tests := []struct {
		osType  string
		machine string
	}{
		{"windows", "x86_64"},
		{"freebsd", "amd64"},
		{"linux", "riscv64"},
		{"darwin", "i386"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.osType+"/"+tt.machine, func(t *testing.T) {
			_, err := Resolve(tt.osType, tt.machine)
			var upe *UnsupportedPlatformError
			require.True(t, errors.As(err, &upe))
			assert.Equal(t, tt.osType, upe.OSType)
			assert.Equal(t, tt.machine, upe.Machine)
		})
	}
}

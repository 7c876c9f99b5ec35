// Package platform names the host operating system and CPU the way release
// manifests do, and selects the dynamic-library search-path variable.
//
// Manifests use "linux", "darwin" and "windows" for the OS and the
// Rust-style architecture names ("x86_64", "aarch64", ...) for the CPU, so
// Go's GOARCH values are translated before matching.
package platform

import (
	"fmt"
	"runtime"
)

// Platform is an os/cpu pair as written in spm.json.
type Platform struct {
	OS  string
	CPU string
}

// String returns "os/cpu".
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.CPU)
}

// Current returns the platform of the running binary.
func Current() Platform {
	return FromGo(runtime.GOOS, runtime.GOARCH)
}

// FromGo converts GOOS/GOARCH values to manifest names.
func FromGo(goos, goarch string) Platform {
	return Platform{OS: NormalizeOS(goos), CPU: NormalizeCPU(goarch)}
}

// Override returns the current platform with any non-empty field replaced.
// Overrides are normalized with the same alias table, nothing else; an
// unknown name is used verbatim.
func Override(os, cpu string) Platform {
	p := Current()
	if os != "" {
		p.OS = NormalizeOS(os)
	}
	if cpu != "" {
		p.CPU = NormalizeCPU(cpu)
	}
	return p
}

var osAliases = map[string]string{
	"macos": "darwin",
}

var cpuAliases = map[string]string{
	"amd64":    "x86_64",
	"arm64":    "aarch64",
	"386":      "x86",
	"ppc64":    "powerpc64",
	"ppc64le":  "powerpc64",
	"loong64":  "loongarch64",
	"mips64le": "mips64",
	"mipsle":   "mips",
}

// NormalizeOS maps OS aliases to manifest names ("macos" -> "darwin").
// Matching downstream is case-sensitive, so case is preserved.
func NormalizeOS(os string) string {
	if v, ok := osAliases[os]; ok {
		return v
	}
	return os
}

// NormalizeCPU maps Go architecture names to manifest names
// ("amd64" -> "x86_64", "arm64" -> "aarch64").
func NormalizeCPU(cpu string) string {
	if v, ok := cpuAliases[cpu]; ok {
		return v
	}
	return cpu
}

package simd

import (
	"os"
	"runtime"
	"strings"

	"github.com/hupe1980/tensgo/dtype"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents pure Go execution without a wide register.
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit SIMD, ASIMD).
	NEON
	// SVE2 represents ARM64 SVE2 (scalable vectors, at least 128 bit).
	SVE2
	// AVX2 represents x86-64 AVX2 (256-bit SIMD with FMA).
	AVX2
	// AVX512 represents x86-64 AVX-512 (512-bit SIMD).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// RegisterBytes returns the width of one vector register in bytes.
func (i ISA) RegisterBytes() int {
	switch i {
	case AVX512:
		return 64
	case AVX2:
		return 32
	case NEON, SVE2:
		return 16
	default:
		// Generic code still groups 16 bytes per iteration so that the
		// vectorised strategy stays exercised on every platform.
		return 16
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "TENSGO_SIMD"

// Package-level state, initialized once by the platform-specific init.
var (
	activeISA   ISA
	hasOverride bool

	hasASIMD    bool // ARM64 NEON
	hasSVE2     bool // ARM64 SVE2
	hasAVX2     bool // x86-64 AVX2 + FMA
	hasAVX512F  bool // x86-64 AVX-512 Foundation
	hasAVX512BW bool // x86-64 AVX-512 Byte/Word
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv(EnvOverride); override != "" {
		if isa, ok := ParseISA(override); ok {
			hasOverride = true
			if isISAAvailable(isa) {
				activeISA = isa
				return
			}
			// Unavailable override: fall through to auto-detection.
		}
	}

	activeISA = selectBestISA()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case SVE2:
		return hasSVE2
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F && hasAVX512BW
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		return selectBestARM64()
	case "amd64":
		return selectBestAMD64()
	default:
		return Generic
	}
}

func selectBestARM64() ISA {
	// Apple silicon reports SVE2 through emulation; NEON is the native width there.
	preferNEON := runtime.GOOS == "darwin"

	if hasSVE2 && !preferNEON {
		return SVE2
	}
	if hasASIMD {
		return NEON
	}
	return Generic
}

func selectBestAMD64() ISA {
	if hasAVX512F && hasAVX512BW {
		return AVX512
	}
	if hasAVX2 {
		return AVX2
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if TENSGO_SIMD was set.
func IsOverridden() bool {
	return hasOverride
}

// HasASIMD returns true if ARM64 NEON is available.
func HasASIMD() bool {
	return hasASIMD
}

// HasSVE2 returns true if ARM64 SVE2 is available.
func HasSVE2() bool {
	return hasSVE2
}

// HasAVX2 returns true if x86-64 AVX2+FMA is available.
func HasAVX2() bool {
	return hasAVX2
}

// HasAVX512 returns true if x86-64 AVX-512 (F+BW) is available.
func HasAVX512() bool {
	return hasAVX512F && hasAVX512BW
}

// Width returns the number of elements of kind k held by one register of the
// active ISA. It is at least 1.
func Width(k dtype.Kind) int {
	return WidthFor(activeISA, k)
}

// WidthFor returns the lane count of kind k for the given ISA.
func WidthFor(isa ISA, k dtype.Kind) int {
	size := k.Size()
	if size == 0 {
		return 1
	}
	return max(1, isa.RegisterBytes()/size)
}

package simd

import (
	"fmt"
	"os"
	"runtime"
	"testing"

	"github.com/hupe1980/tensgo/dtype"
)

// TestMain prints ISA diagnostics so CI logs show which register width is active.
func TestMain(m *testing.M) {
	fmt.Printf("=== SIMD ISA Diagnostics ===\n")
	fmt.Printf("GOOS=%s GOARCH=%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("%s=%q\n", EnvOverride, os.Getenv(EnvOverride))
	fmt.Printf("Active ISA: %s (%d-byte registers)\n", ActiveISA(), ActiveISA().RegisterBytes())
	fmt.Printf("Override: %v\n", IsOverridden())
	fmt.Printf("Lanes: float32=%d float64=%d int8=%d\n", Width(dtype.Float32), Width(dtype.Float64), Width(dtype.Int8))

	switch runtime.GOARCH {
	case "arm64":
		fmt.Printf("  ASIMD (NEON): %v\n", HasASIMD())
		fmt.Printf("  SVE2: %v\n", HasSVE2())
	case "amd64":
		fmt.Printf("  AVX2+FMA: %v\n", HasAVX2())
		fmt.Printf("  AVX-512 (F+BW): %v\n", HasAVX512())
	}

	fmt.Printf("============================\n\n")

	os.Exit(m.Run())
}

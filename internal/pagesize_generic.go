//go:build !amd64 && !arm64 && !riscv64 && !loong64

package internal

// DefaultPageSize is the default virtual memory page size for architectures
// without a more specific constant. 4 KiB is the common case across
// mips64, mips64le, ppc64, ppc64le, s390x, wasm, and 386/arm.
const DefaultPageSize = 4096

//go:build arm64

package internal

// DefaultPageSize is the virtual memory page size assumed for arm64.
// Most Linux/arm64 systems use 4 KiB pages, but Apple Silicon uses 16 KiB
// pages; use the larger value as a conservative default so page-aligned
// buffers are safe to munmap/VirtualFree on either.
const DefaultPageSize = 16384

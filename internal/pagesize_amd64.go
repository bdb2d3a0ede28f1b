//go:build amd64

package internal

// DefaultPageSize is the virtual memory page size assumed for amd64 when an
// allocator needs a page-aligned backing buffer. Linux, Windows, and BSD
// variants all use 4 KiB pages on this architecture.
const DefaultPageSize = 4096

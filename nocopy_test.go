package memregion

import (
	"sync"
	"testing"
)

// TestNoCopy tests the noCopy sentinel type.
// noCopy implements sync.Locker interface for go vet copy detection.
func TestNoCopy(t *testing.T) {
	var nc noCopy
	nc.Lock()
	nc.Unlock()

	var _ sync.Locker = &nc
}

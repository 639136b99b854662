// Package clusterl1 models the cluster's L1 scratchpad allocator: a single
// contiguous region sized 3*B for the DMA staging ring.
package clusterl1

import "fmt"

// Allocator owns the L1 staging region for one cluster lifetime.
type Allocator struct {
	staging []byte
	bufSize int
}

// New allocates a staging region of 3*bufSize bytes. bufSize must be
// positive; 3*bufSize dividing the L1 region is trivially true here since
// the region is carved to exactly that size.
func New(bufSize int) (*Allocator, error) {
	if bufSize <= 0 {
		return nil, fmt.Errorf("clusterl1: bufSize must be positive, got %d", bufSize)
	}
	return &Allocator{
		staging: make([]byte, 3*bufSize),
		bufSize: bufSize,
	}, nil
}

// BufSize returns B, the size of one staging sub-buffer.
func (a *Allocator) BufSize() int { return a.bufSize }

// StagingRegion returns the full 3*B staging region.
func (a *Allocator) StagingRegion() []byte { return a.staging }

// Close releases the staging region. Go's GC reclaims the backing array
// once nothing references it; this exists for symmetry with Cluster.Close
// freeing allocations in reverse acquisition order.
func (a *Allocator) Close() {
	a.staging = nil
}

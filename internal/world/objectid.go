package world

import "sync/atomic"

// EntityIDGenerator generates unique entity IDs for transient world entities.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Viewers (external consumers pinning cells)
//	0x20000000 - 0x2FFFFFFF: Light markers spawned by forced relighting
type EntityIDGenerator struct {
	nextViewerID atomic.Uint32
	nextMarkerID atomic.Uint32
}

// NewEntityIDGenerator creates a new ID generator.
func NewEntityIDGenerator() *EntityIDGenerator {
	gen := &EntityIDGenerator{}
	gen.nextViewerID.Store(0x10000000)
	gen.nextMarkerID.Store(0x20000000)
	return gen
}

// NextViewerID generates next unique viewer ID.
func (g *EntityIDGenerator) NextViewerID() uint32 {
	return g.nextViewerID.Add(1)
}

// NextMarkerID generates next unique light marker ID.
func (g *EntityIDGenerator) NextMarkerID() uint32 {
	return g.nextMarkerID.Add(1)
}

// IsMarkerID reports whether id lies in the light marker range.
func IsMarkerID(id uint32) bool {
	return id >= 0x20000000 && id < 0x30000000
}

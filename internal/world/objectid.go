package world

import (
	"sync/atomic"

	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// IDGenerator hands out unique ids for actors and modifier sources.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: bosses
//	0x20000000 - 0x2FFFFFFF: targets
//
// Source ids use their own counter starting at 1.
//
// One generator is created per simulation and passed to whoever needs it.
type IDGenerator struct {
	nextBossID   atomic.Uint32
	nextTargetID atomic.Uint32
	nextSourceID atomic.Uint64
}

// NewIDGenerator creates a generator positioned at the start of each range.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextBossID.Store(0x10000000)
	gen.nextTargetID.Store(0x20000000)
	return gen
}

// NextBossID returns the next boss id.
func (g *IDGenerator) NextBossID() uint32 {
	return g.nextBossID.Add(1)
}

// NextTargetID returns the next target id.
func (g *IDGenerator) NextTargetID() uint32 {
	return g.nextTargetID.Add(1)
}

// NewSource allocates a modifier source with a unique diagnostic id.
// Identity still comes from the returned pointer.
func (g *IDGenerator) NewSource(kind stat.SourceKind, name string) *stat.Source {
	src := stat.NewSource(kind, name)
	src.ID = g.nextSourceID.Add(1)
	return src
}

// IsBossID reports whether id lies in the boss range.
func IsBossID(id uint32) bool {
	return id >= 0x10000000 && id < 0x20000000
}

// IsTargetID reports whether id lies in the target range.
func IsTargetID(id uint32) bool {
	return id >= 0x20000000 && id < 0x30000000
}

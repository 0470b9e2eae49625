// Lookahead buffer for the cutter compensation preprocessor
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package compensation

import "smoothie-go-migration/pkg/gcode"

// BufferCapacity is the fixed number of lookahead slots. Insertion
// past capacity is rejected, never overwritten.
const BufferCapacity = 10

// MoveKind classifies a buffered command's motion code.
type MoveKind int

const (
	// KindRapid is a G0 positioning move.
	KindRapid MoveKind = iota
	// KindLinear is a G1 cutting move.
	KindLinear
	// KindArcCW is a G2 clockwise arc.
	KindArcCW
	// KindArcCCW is a G3 counter-clockwise arc.
	KindArcCCW
	// KindOther is any non-motion command passing through the buffer.
	KindOther
)

// String returns the kind name.
func (k MoveKind) String() string {
	switch k {
	case KindRapid:
		return "rapid"
	case KindLinear:
		return "linear"
	case KindArcCW:
		return "arc_cw"
	case KindArcCCW:
		return "arc_ccw"
	default:
		return "other"
	}
}

// geometric reports whether the kind participates in compensation.
func (k MoveKind) geometric() bool {
	return k == KindLinear || k == KindArcCW || k == KindArcCCW
}

// hasPosition reports whether the kind carries endpoint coordinates.
func (k MoveKind) hasPosition() bool {
	return k != KindOther
}

// bufferedMove is one slot in the lookahead buffer.
type bufferedMove struct {
	kind MoveKind

	// endpoint holds the uncompensated programmed endpoint at
	// buffering time and is mutated in place to the compensated
	// endpoint on resolution.
	endpoint [3]float64

	// arcOffset is the I/J center offset relative to the arc's
	// uncompensated start; only meaningful for arc kinds.
	arcOffset [2]float64

	// uncompStart is the uncompensated position immediately before
	// this move, captured at buffering time. It anchors arc center
	// recomputation and is immutable once buffered.
	uncompStart [3]float64

	// resolved is set once geometry has been computed.
	resolved bool

	// original is the engine-owned clone of the source command,
	// released when the slot is emitted or cleared.
	original *gcode.Command
}

// moveBuffer is a fixed-capacity circular store of buffered moves.
// All operations are O(1) and allocation free.
type moveBuffer struct {
	slots [BufferCapacity]bufferedMove
	head  int // next insertion index
	tail  int // oldest entry index
	count int
}

// len returns the number of buffered moves.
func (b *moveBuffer) len() int {
	return b.count
}

// full reports whether the buffer is at capacity.
func (b *moveBuffer) full() bool {
	return b.count >= BufferCapacity
}

func nextIndex(i int) int {
	return (i + 1) % BufferCapacity
}

// insert appends a move. Returns false when the buffer is full; the
// move is not buffered and the caller must apply backpressure.
func (b *moveBuffer) insert(m bufferedMove) bool {
	if b.full() {
		return false
	}
	b.slots[b.head] = m
	b.head = nextIndex(b.head)
	b.count++
	return true
}

// peekAt returns the move at the given offset from the oldest entry,
// or nil when the offset exceeds the buffered count.
func (b *moveBuffer) peekAt(offset int) *bufferedMove {
	if offset < 0 || offset >= b.count {
		return nil
	}
	return &b.slots[(b.tail+offset)%BufferCapacity]
}

// oldest returns the oldest buffered move, or nil when empty.
func (b *moveBuffer) oldest() *bufferedMove {
	return b.peekAt(0)
}

// removeOldest removes the oldest slot, releasing its command clone.
// Returns false when the buffer is empty.
func (b *moveBuffer) removeOldest() bool {
	if b.count == 0 {
		return false
	}
	b.slots[b.tail] = bufferedMove{}
	b.tail = nextIndex(b.tail)
	b.count--
	return true
}

// clear releases every slot's command clone and resets the buffer to
// empty. Used on session reset.
func (b *moveBuffer) clear() {
	for i := range b.slots {
		b.slots[i] = bufferedMove{}
	}
	b.head = 0
	b.tail = 0
	b.count = 0
}

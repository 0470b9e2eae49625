package compensation

import (
	"testing"

	"smoothie-go-migration/pkg/gcode"
)

func makeMove(t *testing.T, line string) bufferedMove {
	t.Helper()
	cmd, err := gcode.Parse(line)
	if err != nil || cmd == nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	return bufferedMove{kind: classify(cmd), original: cmd}
}

func TestBufferInsertToCapacity(t *testing.T) {
	var b moveBuffer
	for i := 0; i < BufferCapacity; i++ {
		m := makeMove(t, "G1 X1")
		m.endpoint[0] = float64(i)
		if !b.insert(m) {
			t.Fatalf("insert %d rejected below capacity", i)
		}
	}
	if b.len() != BufferCapacity {
		t.Fatalf("expected %d buffered, got %d", BufferCapacity, b.len())
	}

	// The 11th is rejected, never overwritten.
	if b.insert(makeMove(t, "G1 X99")) {
		t.Error("insert past capacity must fail")
	}

	// The first 10 remain retrievable unchanged, in order.
	for i := 0; i < BufferCapacity; i++ {
		m := b.peekAt(i)
		if m == nil {
			t.Fatalf("peekAt(%d) returned nil", i)
		}
		if m.endpoint[0] != float64(i) {
			t.Errorf("slot %d: endpoint %v, want %v", i, m.endpoint[0], float64(i))
		}
	}
}

func TestBufferPeekBounds(t *testing.T) {
	var b moveBuffer
	if b.peekAt(0) != nil {
		t.Error("peek on empty buffer should return nil")
	}
	b.insert(makeMove(t, "G1 X1"))
	if b.peekAt(1) != nil {
		t.Error("peek past buffered count should return nil")
	}
	if b.peekAt(-1) != nil {
		t.Error("negative peek should return nil")
	}
}

func TestBufferFIFOWraparound(t *testing.T) {
	var b moveBuffer

	// Force head/tail to wrap by cycling more entries than the
	// capacity.
	seq := 0.0
	for i := 0; i < BufferCapacity/2; i++ {
		m := makeMove(t, "G1 X1")
		m.endpoint[0] = seq
		seq++
		b.insert(m)
	}
	expect := 0.0
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < BufferCapacity; i++ {
			m := makeMove(t, "G1 X1")
			m.endpoint[0] = seq
			seq++
			if !b.insert(m) {
				t.Fatalf("cycle %d: insert rejected at count %d", cycle, b.len())
			}
			old := b.oldest()
			if old.endpoint[0] != expect {
				t.Fatalf("cycle %d: oldest %v, want %v", cycle, old.endpoint[0], expect)
			}
			expect++
			if !b.removeOldest() {
				t.Fatal("removeOldest failed on non-empty buffer")
			}
		}
	}
}

func TestBufferRemoveEmpty(t *testing.T) {
	var b moveBuffer
	if b.removeOldest() {
		t.Error("removeOldest on empty buffer should return false")
	}
}

func TestBufferClearReleasesSlots(t *testing.T) {
	var b moveBuffer
	for i := 0; i < 4; i++ {
		b.insert(makeMove(t, "G1 X1"))
	}
	b.clear()
	if b.len() != 0 {
		t.Errorf("expected empty buffer after clear, got %d", b.len())
	}
	for i := range b.slots {
		if b.slots[i].original != nil {
			t.Errorf("slot %d still holds a command clone after clear", i)
		}
	}
}

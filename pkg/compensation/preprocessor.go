// Cutter radius compensation preprocessor
//
// Rewrites a stream of linear and circular moves so the tool's cutting
// edge, rather than its center line, follows the programmed geometry,
// offset by the tool radius to the left (G41) or right (G42) of
// travel. Moves are staged in a fixed lookahead buffer so corner
// geometry can be computed from the following moves before emission.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package compensation

import (
	"smoothie-go-migration/pkg/errors"
	"smoothie-go-migration/pkg/gcode"
	"smoothie-go-migration/pkg/geometry"
	"smoothie-go-migration/pkg/log"
)

// lookaheadWindow is the number of buffered moves required before the
// oldest may be resolved: the current move plus two of corner context.
// Draining waives the requirement.
const lookaheadWindow = 3

// Mode is the active compensation state.
type Mode int

const (
	// ModeOff passes every move through unchanged (G40).
	ModeOff Mode = iota
	// ModeLeft offsets the tool to the left of travel (G41).
	ModeLeft
	// ModeRight offsets the tool to the right of travel (G42).
	ModeRight
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeLeft:
		return "left"
	case ModeRight:
		return "right"
	default:
		return "off"
	}
}

// Config holds preprocessor configuration, supplied once at session
// start.
type Config struct {
	// DefaultRadius is used when an enable command carries no
	// radius word.
	DefaultRadius float64

	Logger *log.Logger
}

// Preprocessor is the compensation engine. It owns the lookahead
// buffer and the compensation context, and is driven synchronously
// from the command ingestion path: one move buffered, zero or one
// emitted, per call. It performs no internal locking; a multi-threaded
// caller must serialize all calls.
type Preprocessor struct {
	mode   Mode
	radius float64

	// Running trackers of the programmed and emitted path. Both are
	// seeded from the machine position via SetInitialPosition.
	uncompPos [3]float64
	compPos   [3]float64

	// draining is set on the transition to off; it waives the
	// lookahead requirement so buffered moves flush out.
	draining bool

	defaultRadius float64
	buf           moveBuffer
	logger        *log.Logger
}

// New creates a preprocessor with compensation off.
func New(cfg Config) *Preprocessor {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New("compensation")
	}
	return &Preprocessor{
		defaultRadius: cfg.DefaultRadius,
		logger:        logger,
	}
}

// SetInitialPosition seeds both position trackers from the machine's
// current position. Call before the first move is buffered.
func (p *Preprocessor) SetInitialPosition(pos [3]float64) {
	p.uncompPos = pos
	p.compPos = pos
}

// Active reports whether compensation is enabled or still draining.
func (p *Preprocessor) Active() bool {
	return p.mode != ModeOff
}

// Mode returns the current compensation mode.
func (p *Preprocessor) Mode() Mode {
	return p.mode
}

// Radius returns the active tool radius.
func (p *Preprocessor) Radius() float64 {
	return p.radius
}

// Buffered returns the number of moves awaiting emission.
func (p *Preprocessor) Buffered() int {
	return p.buf.len()
}

// Draining reports whether a disable flush is in progress.
func (p *Preprocessor) Draining() bool {
	return p.draining
}

// EnableLeft enables left-side compensation (G41) with the given tool
// radius; a non-positive radius selects the configured default.
//
// Buffered unresolved moves are resolved with the radius and side in
// effect at resolution time, so callers that need one radius per move
// must drain the buffer before changing radius or side mid-stream.
func (p *Preprocessor) EnableLeft(radius float64) {
	p.enable(ModeLeft, radius)
}

// EnableRight enables right-side compensation (G42). See EnableLeft
// for the mid-stream radius change caveat.
func (p *Preprocessor) EnableRight(radius float64) {
	p.enable(ModeRight, radius)
}

func (p *Preprocessor) enable(mode Mode, radius float64) {
	if radius <= 0 {
		radius = p.defaultRadius
	}
	p.mode = mode
	p.radius = radius
	p.draining = false
	p.logger.Info("compensation enabled: side=%s radius=%.4f", mode, radius)
}

// Disable begins the transition to off (G40). When moves remain
// buffered the engine enters the draining phase: the caller must pump
// Next until the buffer reports empty, at which point the mode
// actually returns to off. The side and radius stay in effect while
// draining so the flushed moves still come out compensated.
func (p *Preprocessor) Disable() {
	if p.mode == ModeOff {
		return
	}
	if p.buf.len() == 0 {
		p.mode = ModeOff
		p.radius = 0
		p.logger.Info("compensation disabled")
		return
	}
	p.draining = true
	p.logger.Info("compensation disabling, draining %d buffered moves", p.buf.len())
}

// Reset synchronously clears the buffer and returns the mode to off.
// This is the machine abort path; every buffered command clone is
// released.
func (p *Preprocessor) Reset() {
	p.buf.clear()
	p.mode = ModeOff
	p.radius = 0
	p.draining = false
	p.logger.Warn("compensation reset, buffer cleared")
}

// Buffer clones the command into the lookahead buffer. Returns false
// when the buffer is at capacity; the move is not consumed and the
// caller must stall ingestion until an emission frees a slot. The
// incoming command is never mutated.
func (p *Preprocessor) Buffer(cmd *gcode.Command) bool {
	if p.buf.full() {
		return false
	}

	m := bufferedMove{
		kind:     classify(cmd),
		original: cmd.Clone(),
	}

	if m.kind.hasPosition() {
		// Capture the uncompensated start before the tracker
		// moves; it anchors arc center recomputation.
		m.uncompStart = p.uncompPos
		m.endpoint = p.extractEndpoint(cmd)
		p.uncompPos = m.endpoint
	}

	if m.kind == KindArcCW || m.kind == KindArcCCW {
		i, _, _ := cmd.Float("I")
		j, _, _ := cmd.Float("J")
		m.arcOffset = [2]float64{i, j}
	}

	p.buf.insert(m)
	return true
}

// classify maps a command's motion code to a move kind.
func classify(cmd *gcode.Command) MoveKind {
	code, ok := cmd.MotionCode()
	if !ok {
		return KindOther
	}
	switch code {
	case 0:
		return KindRapid
	case 1:
		return KindLinear
	case 2:
		return KindArcCW
	case 3:
		return KindArcCCW
	default:
		return KindOther
	}
}

// extractEndpoint reads X/Y/Z words, defaulting each missing axis from
// the running uncompensated position.
func (p *Preprocessor) extractEndpoint(cmd *gcode.Command) [3]float64 {
	end := p.uncompPos
	for axis, letter := range [3]string{"X", "Y", "Z"} {
		if v, ok, err := cmd.Float(letter); ok && err == nil {
			end[axis] = v
		}
	}
	return end
}

// Next resolves and emits the oldest buffered move. It returns
// (nil, nil) when the buffer is empty or when resolution is deferred
// pending more lookahead. A degenerate arc returns a hard error; the
// offending move is dropped and no motion is emitted for it.
func (p *Preprocessor) Next() (*gcode.Command, error) {
	if p.buf.len() == 0 {
		return nil, nil
	}

	// Active compensation holds moves until enough corner context
	// exists, unless a disable flush is running.
	if p.Active() && !p.draining && p.buf.len() < lookaheadWindow {
		return nil, nil
	}

	cur := p.buf.oldest()

	if p.Active() && cur.kind.geometric() {
		if err := p.resolve(cur); err != nil {
			p.buf.removeOldest()
			p.finishDrain()
			return nil, err
		}
	}

	out := reconstruct(cur)

	// The emitted endpoint feeds the next arc's compensated start.
	if cur.kind.hasPosition() {
		p.compPos = cur.endpoint
	}

	p.buf.removeOldest()
	p.finishDrain()
	return out, nil
}

// finishDrain completes the off transition once the drain has emptied
// the buffer.
func (p *Preprocessor) finishDrain() {
	if p.draining && p.buf.len() == 0 {
		p.buf.clear()
		p.draining = false
		p.mode = ModeOff
		p.radius = 0
		p.logger.Info("compensation disabled, drain complete")
	}
}

// resolve computes the compensated geometry for the oldest buffered
// move, mutating its endpoint (and arc offset) in place.
func (p *Preprocessor) resolve(cur *bufferedMove) error {
	if cur.resolved {
		return errors.InvariantError("move resolved twice")
	}

	side := geometry.SideLeft
	if p.mode == ModeRight {
		side = geometry.SideRight
	}

	switch cur.kind {
	case KindArcCW, KindArcCCW:
		// Arcs depend only on their own captured start, never on
		// lookahead into subsequent moves.
		newEnd, newOffset, ok := geometry.CompensateArc(
			xy(cur.uncompStart), xy(p.compPos), xy(cur.endpoint),
			cur.arcOffset, p.radius, side, cur.kind == KindArcCW)
		if !ok {
			return errors.DegenerateArcError(cur.original.Raw)
		}
		cur.endpoint[0] = newEnd[0]
		cur.endpoint[1] = newEnd[1]
		cur.arcOffset = newOffset

	case KindLinear:
		dirIn := [2]float64{
			cur.endpoint[0] - cur.uncompStart[0],
			cur.endpoint[1] - cur.uncompStart[1],
		}
		newEnd := p.resolveLinear(cur, dirIn, side)
		cur.endpoint[0] = newEnd[0]
		cur.endpoint[1] = newEnd[1]

	default:
		return errors.InvariantError("resolve called for non-geometric move")
	}

	cur.resolved = true
	return nil
}

// resolveLinear offsets a straight move's endpoint, using the corner
// intersection with the following move when enough lookahead exists
// and falling back to a plain perpendicular offset otherwise.
func (p *Preprocessor) resolveLinear(cur *bufferedMove, dirIn [2]float64, side geometry.Side) [2]float64 {
	uIn, okIn := geometry.Normalize(dirIn)
	corner := xy(cur.endpoint)

	// Corner context needs two moves beyond the current one; the
	// tail of a drain falls back to the perpendicular offset.
	if okIn && p.buf.len() >= lookaheadWindow {
		if next := p.buf.peekAt(1); next != nil && next.kind == KindLinear {
			dirOut := [2]float64{
				next.endpoint[0] - cur.endpoint[0],
				next.endpoint[1] - cur.endpoint[1],
			}
			if uOut, ok := geometry.Normalize(dirOut); ok {
				if pt, ok := geometry.CornerIntersection(corner, uIn, uOut, p.radius, side); ok {
					return pt
				}
				// Parallel or collinear segments.
			}
		}
	}

	return geometry.PerpendicularOffset(corner, dirIn, p.radius, side)
}

// xy projects a 3-coordinate position onto the compensation plane.
func xy(pos [3]float64) [2]float64 {
	return [2]float64{pos[0], pos[1]}
}

// GetStatus returns the preprocessor status.
func (p *Preprocessor) GetStatus() map[string]any {
	return map[string]any{
		"mode":                   p.mode.String(),
		"radius":                 p.radius,
		"buffered":               p.buf.len(),
		"draining":               p.draining,
		"uncompensated_position": []float64{p.uncompPos[0], p.uncompPos[1], p.uncompPos[2]},
		"compensated_position":   []float64{p.compPos[0], p.compPos[1], p.compPos[2]},
	}
}

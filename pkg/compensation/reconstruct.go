// Command reconstruction for the cutter compensation preprocessor
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package compensation

import "smoothie-go-migration/pkg/gcode"

// reconstruct builds the output command for an emitted buffer slot.
// The result is always a fresh, independently owned object: the
// engine never writes through to the source command. Every word the
// engine does not interpret (feed rate, K, macro parameters) is
// carried over verbatim from the original.
func reconstruct(m *bufferedMove) *gcode.Command {
	out := m.original.Clone()

	// Unresolved slots pass through untouched: non-geometric moves,
	// and every move while compensation is off.
	if !m.resolved {
		return out
	}

	out.SetFloat("X", m.endpoint[0])
	out.SetFloat("Y", m.endpoint[1])
	out.SetFloat("Z", m.endpoint[2])

	if m.kind == KindArcCW || m.kind == KindArcCCW {
		out.SetFloat("I", m.arcOffset[0])
		out.SetFloat("J", m.arcOffset[1])
	}

	return out
}

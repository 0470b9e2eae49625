// 2D geometry kernel for cutter radius compensation
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package geometry provides the pure 2D math used to offset tool paths
// by the cutter radius. All functions operate on the XY projection and
// are allocation free; callers carry Z through unchanged.
package geometry

import "math"

// Epsilon is the magnitude below which determinants, direction vectors
// and arc radii are treated as degenerate.
const Epsilon = 1e-5

// Side selects which side of the direction of travel the cutter is
// offset to.
type Side int

const (
	// SideLeft offsets to the left of travel (G41).
	SideLeft Side = iota
	// SideRight offsets to the right of travel (G42).
	SideRight
)

// String returns the side name.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Orientation classifies a corner relative to the offset path.
type Orientation int

const (
	// OrientInside means the offset path converges at the corner.
	OrientInside Orientation = iota
	// OrientOutside means the offset path diverges at the corner.
	OrientOutside
)

// String returns the orientation name.
func (o Orientation) String() string {
	if o == OrientInside {
		return "inside"
	}
	return "outside"
}

// cross returns the 2D cross product of two vectors.
func cross(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Normalize returns the unit vector of v. The second result is false
// when |v| is below Epsilon; v is then returned unchanged.
func Normalize(v [2]float64) ([2]float64, bool) {
	mag := math.Hypot(v[0], v[1])
	if mag < Epsilon {
		return v, false
	}
	return [2]float64{v[0] / mag, v[1] / mag}, true
}

// Normal returns the unit direction vector rotated 90 degrees toward
// the compensation side: counter-clockwise for left, clockwise for
// right.
func Normal(dir [2]float64, side Side) [2]float64 {
	if side == SideLeft {
		return [2]float64{-dir[1], dir[0]}
	}
	return [2]float64{dir[1], -dir[0]}
}

// PerpendicularOffset displaces endpoint by radius along the normal of
// the unit direction vector. A degenerate direction leaves the point
// unchanged.
func PerpendicularOffset(endpoint, dir [2]float64, radius float64, side Side) [2]float64 {
	u, ok := Normalize(dir)
	if !ok {
		return endpoint
	}
	n := Normal(u, side)
	return [2]float64{endpoint[0] + n[0]*radius, endpoint[1] + n[1]*radius}
}

// CornerIntersection computes where the two radius-offset lines
// through corner meet. dirIn and dirOut are the unit directions into
// and out of the corner. The second result is false when the segments
// are parallel or collinear; callers fall back to a perpendicular
// offset of the incoming segment.
func CornerIntersection(corner, dirIn, dirOut [2]float64, radius float64, side Side) ([2]float64, bool) {
	det := cross(dirIn, dirOut)
	if math.Abs(det) < Epsilon {
		return [2]float64{}, false
	}

	n1 := Normal(dirIn, side)
	n2 := Normal(dirOut, side)

	// Offset line origins, each displaced along its own normal.
	p1 := [2]float64{corner[0] + n1[0]*radius, corner[1] + n1[1]*radius}
	p2 := [2]float64{corner[0] + n2[0]*radius, corner[1] + n2[1]*radius}

	dx := p2[0] - p1[0]
	dy := p2[1] - p1[1]
	t1 := (dx*dirOut[1] - dy*dirOut[0]) / det

	return [2]float64{p1[0] + t1*dirIn[0], p1[1] + t1*dirIn[1]}, true
}

// CornerOrientation classifies a corner as inside or outside for the
// active compensation side. For left compensation a negative cross
// product means inside; for right compensation a positive one does.
func CornerOrientation(dirIn, dirOut [2]float64, side Side) Orientation {
	c := cross(dirIn, dirOut)
	if side == SideLeft {
		if c < 0 {
			return OrientInside
		}
		return OrientOutside
	}
	if c > 0 {
		return OrientInside
	}
	return OrientOutside
}

// CompensateArc recomputes an arc for cutter compensation. The true
// center comes from the uncompensated start plus the original I/J
// offset; the endpoint shifts along the tangent at the endpoint by the
// cutter radius, outward for left+CCW and right+CW, inward otherwise.
// The returned offset is the vector from the compensated start to the
// unchanged center. The final result is false when the arc radius is
// below Epsilon (degenerate arc); such a move must be rejected, not
// emitted.
func CompensateArc(uncompStart, compStart, endpoint, centerOffset [2]float64,
	radius float64, side Side, clockwise bool) (newEndpoint, newOffset [2]float64, ok bool) {

	center := [2]float64{uncompStart[0] + centerOffset[0], uncompStart[1] + centerOffset[1]}

	toEnd := [2]float64{endpoint[0] - center[0], endpoint[1] - center[1]}
	arcRadius := math.Hypot(toEnd[0], toEnd[1])
	if arcRadius < Epsilon {
		return endpoint, centerOffset, false
	}
	toEnd[0] /= arcRadius
	toEnd[1] /= arcRadius

	// Tangent at the endpoint, perpendicular to the radius vector.
	var tangent [2]float64
	if clockwise {
		tangent = [2]float64{-toEnd[1], toEnd[0]}
	} else {
		tangent = [2]float64{toEnd[1], -toEnd[0]}
	}

	sign := -1.0
	if (side == SideLeft && !clockwise) || (side == SideRight && clockwise) {
		sign = 1.0
	}

	newEndpoint = [2]float64{
		endpoint[0] + tangent[0]*radius*sign,
		endpoint[1] + tangent[1]*radius*sign,
	}
	newOffset = [2]float64{center[0] - compStart[0], center[1] - compStart[1]}
	return newEndpoint, newOffset, true
}

package geometry

import (
	"math"
	"testing"
)

const tol = 1e-9

// distToLine returns the perpendicular distance from p to the line
// through a with unit direction u.
func distToLine(p, a, u [2]float64) float64 {
	d := [2]float64{p[0] - a[0], p[1] - a[1]}
	return math.Abs(u[0]*d[1] - u[1]*d[0])
}

func TestNormal(t *testing.T) {
	// Travel along +X: left normal is +Y, right normal is -Y.
	n := Normal([2]float64{1, 0}, SideLeft)
	if n[0] != 0 || n[1] != 1 {
		t.Errorf("left normal of +X should be +Y, got %v", n)
	}
	n = Normal([2]float64{1, 0}, SideRight)
	if n[0] != 0 || n[1] != -1 {
		t.Errorf("right normal of +X should be -Y, got %v", n)
	}
}

func TestPerpendicularOffset(t *testing.T) {
	end := [2]float64{10, 0}
	dir := [2]float64{1, 0}

	left := PerpendicularOffset(end, dir, 2.0, SideLeft)
	if math.Abs(left[0]-10) > tol || math.Abs(left[1]-2) > tol {
		t.Errorf("left offset: expected (10,2), got %v", left)
	}

	right := PerpendicularOffset(end, dir, 2.0, SideRight)
	if math.Abs(right[0]-10) > tol || math.Abs(right[1]+2) > tol {
		t.Errorf("right offset: expected (10,-2), got %v", right)
	}
}

func TestPerpendicularOffsetDegenerateDirection(t *testing.T) {
	end := [2]float64{3, 4}
	got := PerpendicularOffset(end, [2]float64{0, 0}, 2.0, SideLeft)
	if got != end {
		t.Errorf("degenerate direction should leave point unchanged, got %v", got)
	}
}

func TestCollinearOffsetConstantNormal(t *testing.T) {
	// Several collinear endpoints along +X must all land exactly
	// radius away along the same perpendicular, for both sides.
	dir := [2]float64{1, 0}
	for _, side := range []Side{SideLeft, SideRight} {
		for _, x := range []float64{1, 5, 12.5, 100} {
			p := PerpendicularOffset([2]float64{x, 0}, dir, 1.5, side)
			if math.Abs(p[0]-x) > tol {
				t.Errorf("side %v x=%v: X moved to %v", side, x, p[0])
			}
			if math.Abs(math.Abs(p[1])-1.5) > tol {
				t.Errorf("side %v x=%v: offset magnitude %v, want 1.5", side, x, p[1])
			}
		}
	}
}

func TestCornerIntersectionEquidistant(t *testing.T) {
	// Right-angle corner at (10,0): travel +X then +Y.
	corner := [2]float64{10, 0}
	dirIn := [2]float64{1, 0}
	dirOut := [2]float64{0, 1}
	radius := 2.0

	for _, side := range []Side{SideLeft, SideRight} {
		p, ok := CornerIntersection(corner, dirIn, dirOut, radius, side)
		if !ok {
			t.Fatalf("side %v: expected intersection", side)
		}
		// The intersection must be radius away from both
		// original (unoffset) segment lines.
		d1 := distToLine(p, corner, dirIn)
		d2 := distToLine(p, corner, dirOut)
		if math.Abs(d1-radius) > tol {
			t.Errorf("side %v: distance to incoming line %v, want %v", side, d1, radius)
		}
		if math.Abs(d2-radius) > tol {
			t.Errorf("side %v: distance to outgoing line %v, want %v", side, d2, radius)
		}
	}

	// Known value for the left side: offset lines y=2 and x=8 meet
	// at (8,2).
	p, _ := CornerIntersection(corner, dirIn, dirOut, radius, SideLeft)
	if math.Abs(p[0]-8) > tol || math.Abs(p[1]-2) > tol {
		t.Errorf("left intersection: expected (8,2), got %v", p)
	}
}

func TestCornerIntersectionObtuse(t *testing.T) {
	corner := [2]float64{5, 5}
	dirIn, _ := Normalize([2]float64{1, 1})
	dirOut, _ := Normalize([2]float64{1, -1})
	radius := 1.0

	p, ok := CornerIntersection(corner, dirIn, dirOut, radius, SideRight)
	if !ok {
		t.Fatal("expected intersection for non-degenerate corner")
	}
	if d := distToLine(p, corner, dirIn); math.Abs(d-radius) > tol {
		t.Errorf("distance to incoming line %v, want %v", d, radius)
	}
	if d := distToLine(p, corner, dirOut); math.Abs(d-radius) > tol {
		t.Errorf("distance to outgoing line %v, want %v", d, radius)
	}
}

func TestCornerIntersectionParallel(t *testing.T) {
	dir := [2]float64{1, 0}
	if _, ok := CornerIntersection([2]float64{5, 0}, dir, dir, 1.0, SideLeft); ok {
		t.Error("parallel segments must not report an intersection")
	}
	// Collinear but opposite directions are equally degenerate.
	if _, ok := CornerIntersection([2]float64{5, 0}, dir, [2]float64{-1, 0}, 1.0, SideLeft); ok {
		t.Error("anti-parallel segments must not report an intersection")
	}
}

func TestCornerOrientation(t *testing.T) {
	dirIn := [2]float64{1, 0}
	turnLeft := [2]float64{0, 1}  // cross = +1
	turnRight := [2]float64{0, -1} // cross = -1

	if got := CornerOrientation(dirIn, turnRight, SideLeft); got != OrientInside {
		t.Errorf("left comp, right turn: expected inside, got %v", got)
	}
	if got := CornerOrientation(dirIn, turnLeft, SideLeft); got != OrientOutside {
		t.Errorf("left comp, left turn: expected outside, got %v", got)
	}
	if got := CornerOrientation(dirIn, turnLeft, SideRight); got != OrientInside {
		t.Errorf("right comp, left turn: expected inside, got %v", got)
	}
	if got := CornerOrientation(dirIn, turnRight, SideRight); got != OrientOutside {
		t.Errorf("right comp, right turn: expected outside, got %v", got)
	}
}

func TestCompensateArc(t *testing.T) {
	// Half circle: CW from (0,0) to (10,0) around center (5,0),
	// left compensation with radius 1.
	uncompStart := [2]float64{0, 0}
	compStart := [2]float64{0, 1}
	endpoint := [2]float64{10, 0}
	offset := [2]float64{5, 0}

	newEnd, newOffset, ok := CompensateArc(uncompStart, compStart, endpoint, offset, 1.0, SideLeft, true)
	if !ok {
		t.Fatal("expected valid arc")
	}

	// Tangent at (10,0) for a CW arc points along -Y; left+CW
	// offsets along the travel direction (inward combination).
	if math.Abs(newEnd[0]-10) > tol || math.Abs(newEnd[1]+1) > tol {
		t.Errorf("expected endpoint (10,-1), got %v", newEnd)
	}

	// The absolute center (5,0) is unchanged; I/J is re-derived
	// from the compensated start.
	if math.Abs(newOffset[0]-5) > tol || math.Abs(newOffset[1]+1) > tol {
		t.Errorf("expected offset (5,-1), got %v", newOffset)
	}
}

func TestCompensateArcOutward(t *testing.T) {
	// Same half circle, CCW winding under left compensation is the
	// outward combination: tangent at endpoint flips sign.
	uncompStart := [2]float64{0, 0}
	compStart := [2]float64{0, 0}
	endpoint := [2]float64{10, 0}
	offset := [2]float64{5, 0}

	newEnd, _, ok := CompensateArc(uncompStart, compStart, endpoint, offset, 1.0, SideLeft, false)
	if !ok {
		t.Fatal("expected valid arc")
	}
	if math.Abs(newEnd[0]-10) > tol || math.Abs(newEnd[1]+1) > tol {
		t.Errorf("expected endpoint (10,-1), got %v", newEnd)
	}
}

func TestCompensateArcDegenerate(t *testing.T) {
	// Endpoint coincides with the computed center: zero radius.
	_, _, ok := CompensateArc([2]float64{0, 0}, [2]float64{0, 0},
		[2]float64{5, 0}, [2]float64{5, 0}, 1.0, SideLeft, true)
	if ok {
		t.Error("zero-radius arc must be rejected")
	}
}

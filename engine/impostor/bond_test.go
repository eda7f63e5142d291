package impostor

import (
	"math"
	"testing"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/molecule"
)

func axisBond() []molecule.GPUBond {
	return []molecule.GPUBond{{
		Start: [4]float32{0, 0, 0, 1},
		End:   [4]float32{2, 0, 0, 1},
		Order: 1,
	}}
}

func TestNewBondStrategySelection(t *testing.T) {
	if s := NewBondStrategy(BondStyleRoundCap); s.Style() != BondStyleRoundCap || s.VertsPerBond() != 3 {
		t.Errorf("round cap strategy = %v / %d verts", s.Style(), s.VertsPerBond())
	}
	if s := NewBondStrategy(BondStyleRectangle); s.Style() != BondStyleRectangle || s.VertsPerBond() != 6 {
		t.Errorf("rectangle strategy = %v / %d verts", s.Style(), s.VertsPerBond())
	}
}

func TestRoundCapCentersOnMidpoint(t *testing.T) {
	cam := testCamera(0, 0, 10)
	s := NewBondStrategy(BondStyleRoundCap)

	for i := uint32(0); i < 3; i++ {
		v := s.Vertex(axisBond(), cam, identityTransform(), i)
		wantCenter := common.TransformVec4(cam.View[:], [4]float32{1, 0, 0, 1})
		if v.ViewCenter != wantCenter {
			t.Errorf("vertex %d view center = %v, want midpoint %v", i, v.ViewCenter, wantCenter)
		}
	}
}

func TestRoundCapFragmentMatchesSpherePolicy(t *testing.T) {
	cam := testCamera(0, 0, 10)
	s := NewBondStrategy(BondStyleRoundCap)

	in := BondVertexOut{
		UV:           [2]float32{1.2, 0},
		ClipPosition: [4]float32{0, 0, 5, 10},
		ViewCenter:   [4]float32{0, 0, -10, 1},
		ViewPosition: [4]float32{0.4, 0, -10, 1},
	}
	if _, ok := s.Fragment(in, cam); ok {
		t.Error("round cap fragment outside disk not discarded")
	}

	in.UV = [2]float32{0, 0}
	frag, ok := s.Fragment(in, cam)
	if !ok {
		t.Fatal("center fragment discarded")
	}
	if frag.Color != [3]float32{0.8, 0.8, 0.8} {
		t.Errorf("round cap tint = %v, want fixed grey", frag.Color)
	}

	// Depth is corrected toward the camera by the cap radius.
	uncorrected := in.ClipPosition[2] / in.ClipPosition[3]
	if frag.Depth >= uncorrected {
		t.Errorf("corrected depth %v not nearer than billboard depth %v", frag.Depth, uncorrected)
	}
}

func TestRectangleCornersSpanBond(t *testing.T) {
	cam := testCamera(0, 0, 10)
	s := NewBondStrategy(BondStyleRectangle)

	// Bond from (0,0,0) to (2,0,0): the four unique corners must form a
	// rectangle of length 2 and width 0.8 centered on the midpoint, long
	// axis along x.
	type corner struct{ x, y float32 }
	seen := make(map[corner]bool)
	for i := uint32(0); i < 6; i++ {
		v := s.Vertex(axisBond(), cam, identityTransform(), i)

		// Recover the world position from the view position; with the camera
		// on the z axis the view frame is axis aligned.
		inv := make([]float32, 16)
		if !common.Invert4(inv, cam.View[:]) {
			t.Fatal("view matrix not invertible")
		}
		world := common.TransformVec4(inv, v.ViewPosition)
		seen[corner{roundTo(world[0]), roundTo(world[1])}] = true

		if math.Abs(float64(world[2])) > 1e-5 {
			t.Errorf("corner %d left the bond plane: z = %v", i, world[2])
		}
	}

	want := []corner{{0, -0.4}, {0, 0.4}, {2, -0.4}, {2, 0.4}}
	if len(seen) != 4 {
		t.Fatalf("got %d unique corners (%v), want 4", len(seen), seen)
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("missing corner %v; got %v", w, seen)
		}
	}
}

func TestRectangleScreenAngleMatchesReferenceRotation(t *testing.T) {
	cam := testCamera(0, 0, 10)
	s := NewBondStrategy(BondStyleRectangle)

	// A diagonal bond: reconstruct each corner with an independently
	// computed rotation and compare against the strategy's output.
	bonds := []molecule.GPUBond{{
		Start: [4]float32{0, 0, 0, 1},
		End:   [4]float32{3, 4, 0, 1},
		Order: 1,
	}}

	length := float32(5.0)
	angle := math.Atan2(-4, -3) // displacement = start - end
	sin, cos := math.Sincos(angle)

	for i := uint32(0); i < 6; i++ {
		v := s.Vertex(bonds, cam, identityTransform(), i)

		c := rectangleCorners[i%6]
		lx := float64(c[0] * length / 2)
		ly := float64(c[1] * BondHalfWidth)
		wantX := 1.5 + cos*lx - sin*ly
		wantY := 2.0 + sin*lx + cos*ly

		inv := make([]float32, 16)
		common.Invert4(inv, cam.View[:])
		world := common.TransformVec4(inv, v.ViewPosition)

		if math.Abs(float64(world[0])-wantX) > 1e-4 || math.Abs(float64(world[1])-wantY) > 1e-4 {
			t.Errorf("corner %d = (%v, %v), want (%v, %v)", i, world[0], world[1], wantX, wantY)
		}
	}
}

func TestRectangleFragmentRamp(t *testing.T) {
	cam := testCamera(0, 0, 10)
	s := NewBondStrategy(BondStyleRectangle)

	in := BondVertexOut{
		ClipPosition: [4]float32{0, 0, 5, 10},
		ViewCenter:   [4]float32{0, 0, -10, 1},
		ViewPosition: [4]float32{1, 0, -10, 1},
	}

	// Full brightness at the rectangle's long axis (uv.y = 0.5), dark at
	// both edges; nothing is ever discarded.
	in.UV = [2]float32{0.5, 0.5}
	frag, ok := s.Fragment(in, cam)
	if !ok {
		t.Fatal("rectangle fragment discarded")
	}
	if math.Abs(float64(frag.Color[0]-1)) > 1e-6 {
		t.Errorf("center brightness = %v, want 1", frag.Color[0])
	}

	for _, edge := range []float32{0, 1} {
		in.UV = [2]float32{0.5, edge}
		frag, ok := s.Fragment(in, cam)
		if !ok {
			t.Fatal("edge fragment discarded")
		}
		if frag.Color[0] > 1e-6 {
			t.Errorf("edge brightness = %v, want 0", frag.Color[0])
		}
	}

	// Depth passes through uncorrected.
	in.UV = [2]float32{0.5, 0.5}
	frag, _ = s.Fragment(in, cam)
	if frag.Depth != in.ClipPosition[2]/in.ClipPosition[3] {
		t.Errorf("rectangle depth = %v, want raw %v", frag.Depth, in.ClipPosition[2]/in.ClipPosition[3])
	}
}

func TestBondOrderCarriedNotShaded(t *testing.T) {
	cam := testCamera(0, 0, 10)
	for _, style := range []BondStyle{BondStyleRoundCap, BondStyleRectangle} {
		s := NewBondStrategy(style)
		single := axisBond()
		triple := axisBond()
		triple[0].Order = 3

		a := s.Vertex(single, cam, identityTransform(), 0)
		b := s.Vertex(triple, cam, identityTransform(), 0)
		if a != b {
			t.Errorf("%v: bond order changed the generated geometry", style)
		}
	}
}

// roundTo quantizes to 1e-4 so float corners can key a map.
func roundTo(v float32) float32 {
	return float32(math.Round(float64(v)*1e4) / 1e4)
}

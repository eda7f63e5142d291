package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func floatsClose(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func matricesClose(t *testing.T, got, want []float32) {
	t.Helper()
	// Looser tolerance than floatsClose: accumulated float32 error from
	// 4-term dot products and cofactor inversion exceeds epsilon.
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Errorf("matrix element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	want := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	matricesClose(t, m, want)
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], 1, 2, 3, 0.4, 0.5, 0.6, 2, 2, 2)

	Mul4(out[:], id[:], m[:])
	matricesClose(t, out[:], m[:])

	Mul4(out[:], m[:], id[:])
	matricesClose(t, out[:], m[:])
}

func TestMul4AliasedOutput(t *testing.T) {
	var a, b, want [16]float32
	BuildModelMatrix(a[:], 1, 0, 0, 0, 0.3, 0, 1, 1, 1)
	BuildModelMatrix(b[:], 0, 2, 0, 0.1, 0, 0, 1, 1, 1)
	Mul4(want[:], a[:], b[:])

	// Writing the result into one of the operands must not corrupt the product.
	got := a
	Mul4(got[:], got[:], b[:])
	matricesClose(t, got[:], want[:])
}

func TestMul4TranslationComposition(t *testing.T) {
	var a, b, out [16]float32
	BuildModelMatrix(a[:], 1, 2, 3, 0, 0, 0, 1, 1, 1)
	BuildModelMatrix(b[:], 10, 20, 30, 0, 0, 0, 1, 1, 1)
	Mul4(out[:], a[:], b[:])

	v := TransformVec4(out[:], [4]float32{0, 0, 0, 1})
	want := [3]float32{11, 22, 33}
	for i := range 3 {
		if !floatsClose(v[i], want[i]) {
			t.Errorf("composed translation[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float32
	near, far := float32(0.1), float32(100)
	Perspective(proj[:], float32(math.Pi/4), 1, near, far)

	// A point on the near plane maps to NDC depth 0, a point on the far
	// plane to 1 (WebGPU clip convention).
	nearClip := TransformVec4(proj[:], [4]float32{0, 0, -near, 1})
	if !floatsClose(nearClip[2]/nearClip[3], 0) {
		t.Errorf("near plane depth = %v, want 0", nearClip[2]/nearClip[3])
	}

	farClip := TransformVec4(proj[:], [4]float32{0, 0, -far, 1})
	if !floatsClose(farClip[2]/farClip[3], 1) {
		t.Errorf("far plane depth = %v, want 1", farClip[2]/farClip[3])
	}

	// Depth increases monotonically with distance.
	midClip := TransformVec4(proj[:], [4]float32{0, 0, -10, 1})
	mid := midClip[2] / midClip[3]
	if mid <= 0 || mid >= 1 {
		t.Errorf("mid-range depth = %v, want within (0, 1)", mid)
	}
}

func TestBuildModelMatrixTranslationAndScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 5, -3, 2, 0, 0, 0, 2, 3, 4)

	v := TransformVec4(m[:], [4]float32{1, 1, 1, 1})
	want := [3]float32{5 + 2, -3 + 3, 2 + 4}
	for i := range 3 {
		if !floatsClose(v[i], want[i]) {
			t.Errorf("transformed point[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestBuildModelMatrixRotationY(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, float32(math.Pi/2), 0, 1, 1, 1)

	// A quarter turn around Y carries +X onto -Z.
	v := TransformVec4(m[:], [4]float32{1, 0, 0, 1})
	want := [3]float32{0, 0, -1}
	for i := range 3 {
		if !floatsClose(v[i], want[i]) {
			t.Errorf("rotated point[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, out, id [16]float32
	BuildModelMatrix(m[:], 3, -1, 7, 0.2, 1.1, -0.4, 2, 2, 2)
	Identity(id[:])

	if !Invert4(inv[:], m[:]) {
		t.Fatal("expected model matrix to be invertible")
	}
	Mul4(out[:], m[:], inv[:])
	matricesClose(t, out[:], id[:])
}

func TestInvert4Singular(t *testing.T) {
	var m, inv [16]float32 // all zeros, determinant 0
	if Invert4(inv[:], m[:]) {
		t.Error("expected singular matrix inversion to fail")
	}
}

func TestLookAtTransformsTargetOntoViewAxis(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	// The look-at target lands on the -Z view axis at the eye distance.
	v := TransformVec4(view[:], [4]float32{0, 0, 0, 1})
	want := [3]float32{0, 0, -10}
	for i := range 3 {
		if !floatsClose(v[i], want[i]) {
			t.Errorf("view-space target[%d] = %v, want %v", i, v[i], want[i])
		}
	}

	// The eye maps to the view-space origin.
	eye := TransformVec4(view[:], [4]float32{0, 0, 10, 1})
	for i := range 3 {
		if !floatsClose(eye[i], 0) {
			t.Errorf("view-space eye[%d] = %v, want 0", i, eye[i])
		}
	}
}

func TestViewAxes(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	right, up := ViewAxes(view[:])
	wantRight := [3]float32{1, 0, 0}
	wantUp := [3]float32{0, 1, 0}
	for i := range 3 {
		if !floatsClose(right[i], wantRight[i]) {
			t.Errorf("right[%d] = %v, want %v", i, right[i], wantRight[i])
		}
		if !floatsClose(up[i], wantUp[i]) {
			t.Errorf("up[%d] = %v, want %v", i, up[i], wantUp[i])
		}
	}
}

func TestRemap(t *testing.T) {
	cases := []struct {
		v, inLo, inHi, outLo, outHi, want float32
	}{
		{0, 0, 1, 0.25, 1, 0.25},
		{1, 0, 1, 0.25, 1, 1},
		{0.5, 0, 1, 0.25, 1, 0.625},
		{2, 0, 1, 0, 10, 20}, // extrapolates past the input range
		{-5, -10, 0, 0, 1, 0.5},
	}
	for _, c := range cases {
		if got := Remap(c.v, c.inLo, c.inHi, c.outLo, c.outHi); !floatsClose(got, c.want) {
			t.Errorf("Remap(%v, [%v,%v] -> [%v,%v]) = %v, want %v",
				c.v, c.inLo, c.inHi, c.outLo, c.outHi, got, c.want)
		}
	}
}

func TestNormalize3(t *testing.T) {
	n := Normalize3([3]float32{3, 0, 4})
	if !floatsClose(Length3(n), 1) {
		t.Errorf("normalized length = %v, want 1", Length3(n))
	}
	if !floatsClose(n[0], 0.6) || !floatsClose(n[2], 0.8) {
		t.Errorf("normalized direction = %v, want [0.6 0 0.8]", n)
	}

	zero := Normalize3([3]float32{})
	if zero != [3]float32{} {
		t.Errorf("normalizing zero vector = %v, want zero", zero)
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("byte view length = %d, want 8", len(b))
	}

	// 1.0 is 0x3F800000 little-endian.
	if b[0] != 0 || b[1] != 0 || b[2] != 0x80 || b[3] != 0x3F {
		t.Errorf("first element bytes = % x, want 00 00 80 3f", b[:4])
	}

	if SliceToBytes([]float32(nil)) != nil {
		t.Error("empty slice must produce a nil byte view")
	}
}

func TestBoundingBoxUnionAndContains(t *testing.T) {
	b := NewBoundingBox([3]float32{0, 0, 0})
	b = b.Expand([3]float32{2, 4, 6})
	b = b.Union(NewBoundingBox([3]float32{-1, 1, 1}))

	if b.Min != [3]float32{-1, 0, 0} {
		t.Errorf("Min = %v, want [-1 0 0]", b.Min)
	}
	if b.Max != [3]float32{2, 4, 6} {
		t.Errorf("Max = %v, want [2 4 6]", b.Max)
	}

	if !b.Contains([3]float32{0, 2, 3}) {
		t.Error("interior point must be contained")
	}
	if !b.Contains(b.Min) || !b.Contains(b.Max) {
		t.Error("boundary points must be contained")
	}
	if b.Contains([3]float32{3, 0, 0}) {
		t.Error("exterior point must not be contained")
	}
}

func TestBoundingBoxCenterRadius(t *testing.T) {
	b := NewBoundingBox([3]float32{-1, -1, -1}).Expand([3]float32{1, 1, 1})

	if c := b.Center(); c != [3]float32{0, 0, 0} {
		t.Errorf("Center = %v, want origin", c)
	}
	if r := b.Radius(); !floatsClose(r, float32(math.Sqrt(3))) {
		t.Errorf("Radius = %v, want sqrt(3)", r)
	}
}

package camera

import (
	"math"
	"testing"

	"github.com/shinzlet/atomcad-go/common"
)

func TestGPUCameraUniformLayout(t *testing.T) {
	var g GPUCameraUniform
	if g.Size() != 192 {
		t.Fatalf("GPUCameraUniform size = %d, want 192", g.Size())
	}

	g.Projection[0] = 1
	g.View[0] = 2
	g.ProjectionView[0] = 3
	buf := g.Marshal()
	if len(buf) != 192 {
		t.Fatalf("marshalled size = %d, want 192", len(buf))
	}

	word := func(off int) float32 {
		return math.Float32frombits(uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24)
	}
	if word(0) != 1 || word(64) != 2 || word(128) != 3 {
		t.Errorf("matrix offsets wrong: %v %v %v", word(0), word(64), word(128))
	}
}

func TestUniformProductIsExact(t *testing.T) {
	cam := NewCamera(WithController(NewCameraController(
		WithRadius(10),
		WithTarget(0, 0, 0),
	)))
	cam.Update()

	u := cam.Uniform()
	var want [16]float32
	common.Mul4(want[:], u.Projection[:], u.View[:])
	if u.ProjectionView != want {
		t.Error("ProjectionView is not the exact product of Projection and View")
	}
}

func TestRayFromScreenCenter(t *testing.T) {
	cam := NewCamera(WithController(NewCameraController(
		WithRadius(10),
		WithElevation(0.3),
		WithAzimuth(1.1),
		WithTarget(0, 0, 0),
	)))
	cam.Update()

	// A ray through the viewport center must point from the eye toward the
	// orbit target.
	origin, dir := cam.RayFrom(400, 300, 800, 600)

	px, py, pz := cam.Controller().Position()
	if math.Abs(float64(origin[0]-px)) > 1e-4 ||
		math.Abs(float64(origin[1]-py)) > 1e-4 ||
		math.Abs(float64(origin[2]-pz)) > 1e-4 {
		t.Errorf("ray origin = %v, want eye (%v, %v, %v)", origin, px, py, pz)
	}

	want := common.Normalize3([3]float32{-px, -py, -pz})
	for i := range 3 {
		if math.Abs(float64(dir[i]-want[i])) > 1e-4 {
			t.Errorf("ray direction = %v, want %v", dir, want)
			break
		}
	}
}

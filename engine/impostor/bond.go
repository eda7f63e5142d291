package impostor

import (
	"math"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/molecule"
)

// BondStyle selects which of the two live bond-rendering strategies a scene
// uses. Both are first-class; the choice is a display preference.
type BondStyle int

const (
	// BondStyleRoundCap draws each bond as a camera-facing disc billboard at
	// the bond midpoint with the same disk-clip and depth correction as the
	// sphere impostor. Orientation-free and depth-accurate at the cap.
	BondStyleRoundCap BondStyle = iota

	// BondStyleRectangle draws each bond as a screen-space rectangle rotated
	// to span the two projected endpoints, shaded with a sinusoidal ramp
	// across its width. Spans the full bond but writes uncorrected depth.
	BondStyleRectangle
)

// String returns the style's display name.
func (s BondStyle) String() string {
	switch s {
	case BondStyleRoundCap:
		return "round_cap"
	case BondStyleRectangle:
		return "rectangle"
	default:
		return "unknown"
	}
}

// BondHalfWidth is the rectangle's fixed half-width and the round cap's disc
// radius, in world units.
const BondHalfWidth float32 = 0.4

// bondTint is the fixed round-cap color; bonds have no element lookup.
var bondTint = [3]float32{0.8, 0.8, 0.8}

// BondVertexOut carries the interpolated outputs of either bond vertex stage.
type BondVertexOut struct {
	ClipPosition [4]float32
	// UV meaning differs per strategy: round cap uses disk-radius units with
	// the boundary at |UV| == 1; the rectangle uses corner coordinates with
	// UV[1] in [0, 1] across the width.
	UV           [2]float32
	ViewCenter   [4]float32
	ViewPosition [4]float32
}

// BondStrategy is one of the two interchangeable bond renderers. Vertex and
// Fragment are pure kernels mirroring the strategy's WGSL; VertsPerBond
// fixes the draw contract (record count times this many vertices).
type BondStrategy interface {
	// Style returns the style this strategy implements.
	Style() BondStyle

	// VertsPerBond returns the pulled vertex count per bond record.
	VertsPerBond() uint32

	// Vertex generates one pulled vertex. The caller guarantees
	// i < VertsPerBond()*len(bonds).
	Vertex(bonds []molecule.GPUBond, cam CameraState, transform []float32, i uint32) BondVertexOut

	// Fragment shades one covered pixel. Returns ok=false for fragments the
	// strategy discards.
	Fragment(in BondVertexOut, cam CameraState) (FragmentOut, bool)

	// VertexShaderSource returns the strategy's annotated WGSL vertex program.
	VertexShaderSource() string

	// FragmentShaderSource returns the strategy's annotated WGSL fragment program.
	FragmentShaderSource() string

	// PipelineKey returns the cache key the renderer files this strategy's
	// pipeline under.
	PipelineKey() string
}

// NewBondStrategy returns the strategy implementing the given style.
//
// Parameters:
//   - style: the bond style to render with
//
// Returns:
//   - BondStrategy: the matching strategy
func NewBondStrategy(style BondStyle) BondStrategy {
	if style == BondStyleRectangle {
		return &rectangleStrategy{}
	}
	return &roundCapStrategy{}
}

// --- round-cap strategy ---

type roundCapStrategy struct{}

var _ BondStrategy = &roundCapStrategy{}

func (*roundCapStrategy) Style() BondStyle     { return BondStyleRoundCap }
func (*roundCapStrategy) VertsPerBond() uint32 { return 3 }

func (*roundCapStrategy) Vertex(bonds []molecule.GPUBond, cam CameraState, transform []float32, i uint32) BondVertexOut {
	record, slot := IndexToRecord(i, 3)
	bond := bonds[record]

	worldStart := common.TransformVec4(transform, bond.Start)
	worldEnd := common.TransformVec4(transform, bond.End)
	worldCenter := [4]float32{
		(worldStart[0] + worldEnd[0]) / 2,
		(worldStart[1] + worldEnd[1]) / 2,
		(worldStart[2] + worldEnd[2]) / 2,
		1,
	}

	corner := billboardCorners[slot]
	right, up := common.ViewAxes(cam.View[:])
	offX := corner[0] * BondHalfWidth
	offY := corner[1] * BondHalfWidth
	worldPos := [4]float32{
		worldCenter[0] + offX*right[0] + offY*up[0],
		worldCenter[1] + offX*right[1] + offY*up[1],
		worldCenter[2] + offX*right[2] + offY*up[2],
		1,
	}

	return BondVertexOut{
		ClipPosition: common.TransformVec4(cam.ProjectionView[:], worldPos),
		UV:           corner,
		ViewCenter:   common.TransformVec4(cam.View[:], worldCenter),
		ViewPosition: common.TransformVec4(cam.View[:], worldPos),
	}
}

func (*roundCapStrategy) Fragment(in BondVertexOut, cam CameraState) (FragmentOut, bool) {
	dist := float32(math.Sqrt(float64(in.UV[0]*in.UV[0] + in.UV[1]*in.UV[1])))
	if dist > 1 {
		return FragmentOut{}, false
	}

	z := float32(math.Sqrt(float64(1 - dist*dist)))

	corrected := in.ClipPosition
	for row := range 4 {
		corrected[row] += z * BondHalfWidth * cam.Projection[8+row]
	}

	// Flat-shaded cap: fixed tint, no element lookup, no curvature ramp.
	normal := common.Normalize3([3]float32{
		in.ViewPosition[0] - in.ViewCenter[0],
		in.ViewPosition[1] - in.ViewCenter[1],
		in.ViewPosition[2] - in.ViewCenter[2],
	})

	return FragmentOut{
		Color:  bondTint,
		Normal: normal,
		Depth:  corrected[2] / corrected[3],
	}, true
}

func (*roundCapStrategy) VertexShaderSource() string   { return BondRoundVertexShaderSource }
func (*roundCapStrategy) FragmentShaderSource() string { return BondRoundFragmentShaderSource }
func (*roundCapStrategy) PipelineKey() string          { return "bond_round_cap" }

// --- rectangle strategy ---

type rectangleStrategy struct{}

var _ BondStrategy = &rectangleStrategy{}

// rectangleCorners enumerates the 4 unique rectangle corners across the two
// triangles of the quad; the shared edge is duplicated on purpose. Signs are
// in the rectangle's local frame before rotation by the screen angle.
var rectangleCorners = [6][2]float32{
	{-1, -1}, {1, -1}, {-1, 1},
	{1, -1}, {1, 1}, {-1, 1},
}

func (*rectangleStrategy) Style() BondStyle     { return BondStyleRectangle }
func (*rectangleStrategy) VertsPerBond() uint32 { return 6 }

func (*rectangleStrategy) Vertex(bonds []molecule.GPUBond, cam CameraState, transform []float32, i uint32) BondVertexOut {
	record, slot := IndexToRecord(i, 6)
	bond := bonds[record]

	viewStart := common.TransformVec4(cam.View[:], common.TransformVec4(transform, bond.Start))
	viewEnd := common.TransformVec4(cam.View[:], common.TransformVec4(transform, bond.End))

	// The bond's direction on the screen plane: a camera-facing billboard
	// cannot span two distinct projected endpoints, so the quad is rotated
	// in the view plane to align with the projected axis.
	dispX := viewStart[0] - viewEnd[0]
	dispY := viewStart[1] - viewEnd[1]
	length := float32(math.Sqrt(float64(dispX*dispX + dispY*dispY)))
	screenAngle := float32(math.Atan2(float64(dispY), float64(dispX)))

	corner := rectangleCorners[slot]
	localX := corner[0] * length / 2
	localY := corner[1] * BondHalfWidth
	sin, cos := math.Sincos(float64(screenAngle))
	rotX := float32(cos)*localX - float32(sin)*localY
	rotY := float32(sin)*localX + float32(cos)*localY

	worldStart := common.TransformVec4(transform, bond.Start)
	worldEnd := common.TransformVec4(transform, bond.End)
	worldCenter := [4]float32{
		(worldStart[0] + worldEnd[0]) / 2,
		(worldStart[1] + worldEnd[1]) / 2,
		(worldStart[2] + worldEnd[2]) / 2,
		1,
	}

	right, up := common.ViewAxes(cam.View[:])
	worldPos := [4]float32{
		worldCenter[0] + rotX*right[0] + rotY*up[0],
		worldCenter[1] + rotX*right[1] + rotY*up[1],
		worldCenter[2] + rotX*right[2] + rotY*up[2],
		1,
	}

	return BondVertexOut{
		ClipPosition: common.TransformVec4(cam.ProjectionView[:], worldPos),
		UV:           [2]float32{(corner[0] + 1) / 2, (corner[1] + 1) / 2},
		ViewCenter:   common.TransformVec4(cam.View[:], worldCenter),
		ViewPosition: common.TransformVec4(cam.View[:], worldPos),
	}
}

func (*rectangleStrategy) Fragment(in BondVertexOut, cam CameraState) (FragmentOut, bool) {
	// No discard and no depth correction: the quad's own depth stands, and
	// the sin ramp across the width fakes a cylindrical cross-section.
	brightness := float32(math.Sin(float64(in.UV[1]) * math.Pi))
	if brightness < 0 {
		brightness = 0
	}

	normal := common.Normalize3([3]float32{
		in.ViewPosition[0] - in.ViewCenter[0],
		in.ViewPosition[1] - in.ViewCenter[1],
		in.ViewPosition[2] - in.ViewCenter[2],
	})

	return FragmentOut{
		Color:  [3]float32{brightness, brightness, brightness},
		Normal: normal,
		Depth:  in.ClipPosition[2] / in.ClipPosition[3],
	}, true
}

func (*rectangleStrategy) VertexShaderSource() string   { return BondRectVertexShaderSource }
func (*rectangleStrategy) FragmentShaderSource() string { return BondRectFragmentShaderSource }
func (*rectangleStrategy) PipelineKey() string          { return "bond_rectangle" }

// Package impostor generates procedural billboard geometry for molecular
// scenes. Atoms render as analytically depth-corrected sphere impostors and
// bonds as either round-cap billboards or screen-aligned rectangles, all
// produced by "vertex pulling": the vertex stage derives its source record
// from the built-in vertex counter instead of a vertex buffer.
//
// The geometry and shading math lives twice: once in the WGSL sources under
// assets/ that the GPU runs, and once as the pure Go kernels in this package.
// The kernels are the reference implementation; they make the shader math
// testable on the CPU and are kept in lockstep with the WGSL.
package impostor

import (
	"math"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/molecule"
	"github.com/shinzlet/atomcad-go/engine/periodic"
)

// AtomVertsPerPrimitive is the pulled vertex count per atom: one triangle.
const AtomVertsPerPrimitive uint32 = 3

// CameraState is the per-frame camera input consumed by every kernel.
// ProjectionView must equal Projection * View exactly; the kernels rely on
// the precomputed product instead of multiplying per vertex.
type CameraState struct {
	Projection     [16]float32
	View           [16]float32
	ProjectionView [16]float32
}

// IndexToRecord maps a pulled vertex index to its record index and the slot
// within the primitive. This is the sole addressing mechanism of the
// renderer; draw calls must issue exactly recordCount*vertsPerPrimitive
// vertices for it to stay in range.
//
// Parameters:
//   - vertexIndex: the built-in per-vertex counter
//   - vertsPerPrimitive: 3 for atoms and round-cap bonds, 6 for rectangles
//
// Returns:
//   - record: the index of the record to pull
//   - slot: the vertex's position within its primitive
func IndexToRecord(vertexIndex, vertsPerPrimitive uint32) (record, slot uint32) {
	return vertexIndex / vertsPerPrimitive, vertexIndex % vertsPerPrimitive
}

// billboardCorners is the equilateral triangle that circumscribes the unit
// disk: inradius exactly 1, so the disk boundary sits at uv length 1 and the
// corners at length 2. Scaling by a record's radius bounds its sphere for
// any camera orientation.
var billboardCorners = [3][2]float32{
	{1.7320508, -1.0},
	{-1.7320508, -1.0},
	{0.0, 2.0},
}

// AtomVertexOut carries the interpolated outputs of the atom vertex stage.
type AtomVertexOut struct {
	// ClipPosition is the expanded corner in clip space.
	ClipPosition [4]float32
	// UV is the corner offset in disk-radius units; the silhouette boundary
	// is |UV| == 1.
	UV [2]float32
	// Color and Radius are the element visuals pulled from the table.
	Color  [3]float32
	Radius float32
	// ViewCenter is the un-offset sphere center in view space.
	ViewCenter [4]float32
	// ViewPosition is the expanded corner in view space.
	ViewPosition [4]float32
}

// FragmentOut is the per-pixel result shared by all impostor fragment
// kernels: shaded color, view-space normal, and the depth to write.
type FragmentOut struct {
	Color  [3]float32
	Normal [3]float32
	Depth  float32
}

// AtomVertex runs the atom billboard generator for one pulled vertex.
// The caller guarantees i < 3*len(atoms).
//
// Parameters:
//   - atoms: the atom records (read-only snapshot)
//   - table: the element visual table
//   - cam: the frame's camera state
//   - transform: the per-instance placement matrix (16 elements, column-major)
//   - i: the pulled vertex index
//
// Returns:
//   - AtomVertexOut: the expanded vertex and its interpolants
func AtomVertex(atoms []molecule.GPUAtom, table *periodic.Table, cam CameraState, transform []float32, i uint32) AtomVertexOut {
	record, slot := IndexToRecord(i, AtomVertsPerPrimitive)
	atom := atoms[record]
	vis := table.Lookup(atom.Kind)

	corner := billboardCorners[slot]
	worldCenter := common.TransformVec4(transform, [4]float32{atom.Position[0], atom.Position[1], atom.Position[2], 1})

	right, up := common.ViewAxes(cam.View[:])
	offX := corner[0] * vis.Radius
	offY := corner[1] * vis.Radius
	worldPos := [4]float32{
		worldCenter[0] + offX*right[0] + offY*up[0],
		worldCenter[1] + offX*right[1] + offY*up[1],
		worldCenter[2] + offX*right[2] + offY*up[2],
		1,
	}

	return AtomVertexOut{
		ClipPosition: common.TransformVec4(cam.ProjectionView[:], worldPos),
		UV:           corner,
		Color:        vis.Color,
		Radius:       vis.Radius,
		ViewCenter:   common.TransformVec4(cam.View[:], worldCenter),
		ViewPosition: common.TransformVec4(cam.View[:], worldPos),
	}
}

// SphereFragment runs the sphere impostor fragment kernel. Returns ok=false
// when the fragment lies outside the silhouette disk and must be discarded
// with no color, depth, or normal written.
//
// The depth write is the heart of the impostor: the flat billboard's clip
// position is shifted along the projection's third column by the
// reconstructed surface height, so the depth test behaves as if true sphere
// geometry had been rasterized.
//
// Parameters:
//   - in: the interpolated vertex outputs
//   - cam: the frame's camera state
//
// Returns:
//   - FragmentOut: shaded color, view-space normal, corrected depth
//   - bool: false if the fragment is outside the disk
func SphereFragment(in AtomVertexOut, cam CameraState) (FragmentOut, bool) {
	dist := float32(math.Sqrt(float64(in.UV[0]*in.UV[0] + in.UV[1]*in.UV[1])))
	if dist > 1 {
		return FragmentOut{}, false
	}

	z := float32(math.Sqrt(float64(1 - dist*dist)))

	corrected := in.ClipPosition
	for row := range 4 {
		corrected[row] += z * in.Radius * cam.Projection[8+row]
	}

	brightness := common.Remap(z, 0, 1, 0.25, 1)
	normal := common.Normalize3([3]float32{
		in.ViewPosition[0] - in.ViewCenter[0],
		in.ViewPosition[1] - in.ViewCenter[1],
		in.ViewPosition[2] - in.ViewCenter[2],
	})

	return FragmentOut{
		Color:  [3]float32{in.Color[0] * brightness, in.Color[1] * brightness, in.Color[2] * brightness},
		Normal: normal,
		Depth:  corrected[2] / corrected[3],
	}, true
}

package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (192 bytes, three consecutive mat4x4<f32>).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer:
// the projection matrix, the view matrix, and their precomputed product, all
// column-major. ProjectionView must equal Projection * View exactly; shaders
// consume the product instead of multiplying per vertex.
// Matches the WGSL CameraUniform struct layout exactly. Size: 192 bytes.
type GPUCameraUniform struct {
	Projection     [16]float32 // offset   0: projection matrix (mat4x4<f32>)
	View           [16]float32 // offset  64: view matrix (mat4x4<f32>)
	ProjectionView [16]float32 // offset 128: projection * view (mat4x4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Projection[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.View[i]))
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.ProjectionView[i]))
	}
	return buf
}

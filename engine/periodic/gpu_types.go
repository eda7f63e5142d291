package periodic

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPeriodicTableSource is the canonical WGSL definition of the
// ElementVisual and PeriodicTable structs. Matches GPUElementVisual layout
// exactly (16 bytes per entry, 2048 bytes total).
//
//go:embed assets/periodic_table.wgsl
var GPUPeriodicTableSource string

// GPUElementVisual is the GPU-aligned representation of one table slot.
// Matches the WGSL ElementVisual struct layout exactly. Size: 16 bytes.
type GPUElementVisual struct {
	Color  [3]float32 // offset  0: display color (vec3<f32>)
	Radius float32    // offset 12: sphere radius in world units (f32)
}

// Size returns the size of the GPUElementVisual struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUElementVisual) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the element table into a byte buffer suitable for GPU
// upload: 128 consecutive 16-byte ElementVisual records.
//
// Returns:
//   - []byte: the serialized byte buffer (2048 bytes)
func (t *Table) Marshal() []byte {
	buf := make([]byte, TableSize*16)
	for i, e := range t.entries {
		off := i * 16
		for c := range 3 {
			binary.LittleEndian.PutUint32(buf[off+c*4:], math.Float32bits(e.Color[c]))
		}
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(e.Radius))
	}
	return buf
}

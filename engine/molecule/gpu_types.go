package molecule

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/shinzlet/atomcad-go/common"
)

// GPUAtomBufferSource is the canonical WGSL definition of the Atom struct and
// the AtomBuffer storage layout (16-byte header followed by a runtime array).
//
//go:embed assets/atom_buffer.wgsl
var GPUAtomBufferSource string

// GPUBondBufferSource is the canonical WGSL definition of the Bond struct and
// the BondBuffer storage layout.
//
//go:embed assets/bond_buffer.wgsl
var GPUBondBufferSource string

// GPUAtom is the GPU-aligned representation of one atom record.
// Matches the WGSL Atom struct layout exactly. Size: 16 bytes.
type GPUAtom struct {
	Position [3]float32 // offset  0: world-space position (vec3<f32>)
	Kind     uint32     // offset 12: element kind code, pre-masked (u32)
}

// Size returns the size of the GPUAtom struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUAtom) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUAtom struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUAtom) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], g.Kind)
	return buf
}

// GPUBond is the GPU-aligned representation of one bond record. Endpoints are
// vec4 with w=1 so the shader can transform them without promotion.
// Matches the WGSL Bond struct layout exactly. Size: 48 bytes.
type GPUBond struct {
	Start [4]float32 // offset  0: start endpoint, w=1 (vec4<f32>)
	End   [4]float32 // offset 16: end endpoint, w=1 (vec4<f32>)
	Order uint32     // offset 32: bond multiplicity, unused by shading (u32)
	_pad  [3]uint32  // offset 36: padding to the 16-byte struct alignment
}

// Size returns the size of the GPUBond struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUBond) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBond struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUBond) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Start[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.End[i]))
	}
	binary.LittleEndian.PutUint32(buf[32:], g.Order)
	return buf
}

// AtomBufferHeaderSize is the byte length of the header that precedes the
// atom records in the storage buffer: two u32 words (currently unused by the
// shaders) padded so the first record starts 16-byte aligned.
const AtomBufferHeaderSize = 16

// MarshalAtomBuffer builds the full atom storage buffer contents: the
// 16-byte header followed by the packed atom records.
//
// Parameters:
//   - atoms: the atom records to pack
//
// Returns:
//   - []byte: the storage buffer contents
func MarshalAtomBuffer(atoms []GPUAtom) []byte {
	buf := make([]byte, AtomBufferHeaderSize, AtomBufferHeaderSize+len(atoms)*16)
	return append(buf, common.SliceToBytes(atoms)...)
}

// MarshalBondBuffer builds the bond storage buffer contents: packed bond
// records with no header.
//
// Parameters:
//   - bonds: the bond records to pack
//
// Returns:
//   - []byte: the storage buffer contents
func MarshalBondBuffer(bonds []GPUBond) []byte {
	return common.SliceToBytes(bonds)
}

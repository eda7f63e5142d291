// Package periodic holds the element visual table used to shade atoms.
// Each element maps to a display color and a sphere radius; the table is a
// fixed 128-slot array uploaded once to the GPU and indexed by the atom's
// kind code.
package periodic

// Element is an atomic number. The zero value is not a valid element.
type Element uint32

const (
	Hydrogen   Element = 1
	Helium     Element = 2
	Lithium    Element = 3
	Boron      Element = 5
	Carbon     Element = 6
	Nitrogen   Element = 7
	Oxygen     Element = 8
	Fluorine   Element = 9
	Neon       Element = 10
	Sodium     Element = 11
	Magnesium  Element = 12
	Silicon    Element = 14
	Phosphorus Element = 15
	Sulfur     Element = 16
	Chlorine   Element = 17
	Potassium  Element = 19
	Calcium    Element = 20
	Iron       Element = 26
	Bromine    Element = 35
	Iodine     Element = 53
)

// TableSize is the fixed slot count of the element table. Kind codes are
// masked to this range on lookup, on the CPU and in the shader alike.
const TableSize = 128

// KindMask clamps a kind code into the table range.
const KindMask = TableSize - 1

// ElementVisual is one table slot: an RGB display color and a sphere radius
// in world units (scaled van der Waals radius).
type ElementVisual struct {
	Color  [3]float32
	Radius float32
}

// Table is the full element visual table. Slots without an assigned element
// keep the default entry.
type Table struct {
	entries [TableSize]ElementVisual
}

// defaultVisual fills slots with no element assignment: mid grey, modest
// radius, so malformed kinds render visibly instead of vanishing.
var defaultVisual = ElementVisual{Color: [3]float32{0.5, 0.5, 0.5}, Radius: 1.0}

// cpk lists CPK-convention colors and scaled van der Waals radii for the
// elements that commonly appear in the scenes this renderer targets.
var cpk = map[Element]ElementVisual{
	Hydrogen:   {Color: [3]float32{1.0, 1.0, 1.0}, Radius: 0.6},
	Helium:     {Color: [3]float32{0.85, 1.0, 1.0}, Radius: 0.7},
	Lithium:    {Color: [3]float32{0.8, 0.5, 1.0}, Radius: 0.9},
	Boron:      {Color: [3]float32{1.0, 0.71, 0.71}, Radius: 0.96},
	Carbon:     {Color: [3]float32{0.35, 0.35, 0.35}, Radius: 0.85},
	Nitrogen:   {Color: [3]float32{0.19, 0.31, 0.97}, Radius: 0.78},
	Oxygen:     {Color: [3]float32{1.0, 0.05, 0.05}, Radius: 0.76},
	Fluorine:   {Color: [3]float32{0.56, 0.88, 0.31}, Radius: 0.74},
	Neon:       {Color: [3]float32{0.7, 0.89, 0.96}, Radius: 0.77},
	Sodium:     {Color: [3]float32{0.67, 0.36, 0.95}, Radius: 1.14},
	Magnesium:  {Color: [3]float32{0.54, 1.0, 0.0}, Radius: 0.87},
	Silicon:    {Color: [3]float32{0.94, 0.78, 0.63}, Radius: 1.05},
	Phosphorus: {Color: [3]float32{1.0, 0.5, 0.0}, Radius: 0.9},
	Sulfur:     {Color: [3]float32{1.0, 1.0, 0.19}, Radius: 0.9},
	Chlorine:   {Color: [3]float32{0.12, 0.94, 0.12}, Radius: 0.88},
	Potassium:  {Color: [3]float32{0.56, 0.25, 0.83}, Radius: 1.38},
	Calcium:    {Color: [3]float32{0.24, 1.0, 0.0}, Radius: 1.16},
	Iron:       {Color: [3]float32{0.88, 0.4, 0.2}, Radius: 0.66},
	Bromine:    {Color: [3]float32{0.65, 0.16, 0.16}, Radius: 0.93},
	Iodine:     {Color: [3]float32{0.58, 0.0, 0.58}, Radius: 0.99},
}

// NewTable creates the element visual table with CPK defaults loaded.
//
// Returns:
//   - *Table: the populated table
func NewTable() *Table {
	t := &Table{}
	for i := range t.entries {
		t.entries[i] = defaultVisual
	}
	for el, vis := range cpk {
		t.entries[el&KindMask] = vis
	}
	return t
}

// Lookup returns the visual entry for a kind code. Out-of-range kinds are
// masked into the table rather than rejected; shaders have no error channel,
// so the CPU path mirrors the same clamping policy to stay bit-identical.
//
// Parameters:
//   - kind: the atom's element kind code
//
// Returns:
//   - ElementVisual: the table entry for the masked kind
func (t *Table) Lookup(kind uint32) ElementVisual {
	return t.entries[kind&KindMask]
}

// Set overrides the visual entry for an element. Intended for applications
// that theme the display; the kind is masked like every other access.
func (t *Table) Set(el Element, vis ElementVisual) {
	t.entries[uint32(el)&KindMask] = vis
}

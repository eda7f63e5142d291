package molecule

import (
	"math"
	"strings"
	"testing"

	"github.com/shinzlet/atomcad-go/engine/periodic"
)

func buildWater() Molecule {
	m := NewMolecule("water")
	o := m.AddAtom(periodic.Oxygen, [3]float32{0, 0, 0})
	h1 := m.AddAtom(periodic.Hydrogen, [3]float32{0.96, 0, 0})
	h2 := m.AddAtom(periodic.Hydrogen, [3]float32{-0.24, 0.93, 0})
	_ = m.AddBond(o, h1, BondOrderSingle)
	_ = m.AddBond(o, h2, BondOrderSingle)
	return m
}

func TestGraphConstruction(t *testing.T) {
	m := buildWater()
	if m.AtomCount() != 3 {
		t.Errorf("atom count = %d, want 3", m.AtomCount())
	}
	if m.BondCount() != 2 {
		t.Errorf("bond count = %d, want 2", m.BondCount())
	}
	if got := m.Neighbors(0); len(got) != 2 {
		t.Errorf("oxygen neighbors = %v, want two hydrogens", got)
	}
}

func TestAddBondRejectsInvalidEdges(t *testing.T) {
	m := buildWater()

	if err := m.AddBond(1, 1, BondOrderSingle); err == nil {
		t.Error("self-bond accepted")
	}
	if err := m.AddBond(0, 99, BondOrderSingle); err == nil {
		t.Error("out-of-range bond accepted")
	}
	if err := m.AddBond(1, 0, BondOrderSingle); err == nil {
		t.Error("duplicate bond (reversed) accepted")
	}
}

func TestAtomReprsMaskKinds(t *testing.T) {
	m := NewMolecule("odd")
	m.AddAtom(periodic.Element(128+6), [3]float32{1, 2, 3})
	reprs := m.AtomReprs()
	if len(reprs) != 1 {
		t.Fatalf("repr count = %d, want 1", len(reprs))
	}
	if reprs[0].Kind != 6 {
		t.Errorf("kind = %d, want masked value 6", reprs[0].Kind)
	}
	if reprs[0].Position != [3]float32{1, 2, 3} {
		t.Errorf("position = %v", reprs[0].Position)
	}
}

func TestBondReprsResolveEndpoints(t *testing.T) {
	m := buildWater()
	reprs := m.BondReprs()
	if len(reprs) != 2 {
		t.Fatalf("bond repr count = %d, want 2", len(reprs))
	}
	first := reprs[0]
	if first.Start != [4]float32{0, 0, 0, 1} {
		t.Errorf("start = %v, want oxygen position with w=1", first.Start)
	}
	if first.End != [4]float32{0.96, 0, 0, 1} {
		t.Errorf("end = %v", first.End)
	}
	if first.Order != uint32(BondOrderSingle) {
		t.Errorf("order = %d, want 1", first.Order)
	}
}

func TestBounds(t *testing.T) {
	m := buildWater()
	box, ok := m.Bounds()
	if !ok {
		t.Fatal("bounds reported empty for non-empty molecule")
	}
	if box.Min != [3]float32{-0.24, 0, 0} {
		t.Errorf("min = %v", box.Min)
	}
	if box.Max != [3]float32{0.96, 0.93, 0} {
		t.Errorf("max = %v", box.Max)
	}

	empty := NewMolecule("empty")
	if _, ok := empty.Bounds(); ok {
		t.Error("empty molecule reported bounds")
	}
}

func TestGPUAtomLayout(t *testing.T) {
	a := GPUAtom{Position: [3]float32{1, 2, 3}, Kind: 6}
	if a.Size() != 16 {
		t.Fatalf("GPUAtom size = %d, want 16", a.Size())
	}
	buf := a.Marshal()
	if buf[12] != 6 || buf[13] != 0 {
		t.Errorf("kind not at offset 12: % x", buf)
	}
}

func TestGPUBondLayout(t *testing.T) {
	b := GPUBond{Start: [4]float32{0, 0, 0, 1}, End: [4]float32{2, 0, 0, 1}, Order: 2}
	if b.Size() != 48 {
		t.Fatalf("GPUBond size = %d, want 48", b.Size())
	}
	buf := b.Marshal()
	if buf[32] != 2 {
		t.Errorf("order not at offset 32: % x", buf[32:36])
	}
}

func TestMarshalAtomBufferHeader(t *testing.T) {
	atoms := []GPUAtom{{Position: [3]float32{1, 0, 0}, Kind: 1}}
	buf := MarshalAtomBuffer(atoms)
	if len(buf) != AtomBufferHeaderSize+16 {
		t.Fatalf("buffer size = %d, want %d", len(buf), AtomBufferHeaderSize+16)
	}
	for i := range AtomBufferHeaderSize {
		if buf[i] != 0 {
			t.Fatalf("header byte %d = %d, want 0", i, buf[i])
		}
	}
	// First record starts right after the header, 16-byte aligned.
	if math.Float32frombits(uint32(buf[16])|uint32(buf[17])<<8|uint32(buf[18])<<16|uint32(buf[19])<<24) != 1 {
		t.Error("first atom x not found after header")
	}
}

func TestLoadPDB(t *testing.T) {
	const src = `COMPND    WATER
ATOM      1  O   HOH A   1       0.000   0.000   0.000  1.00  0.00           O
ATOM      2  H1  HOH A   1       0.960   0.000   0.000  1.00  0.00           H
ATOM      3  H2  HOH A   1      -0.240   0.930   0.000  1.00  0.00           H
CONECT    1    2    3
CONECT    2    1
END
`
	m, err := LoadPDB(strings.NewReader(src), "water")
	if err != nil {
		t.Fatalf("LoadPDB: %v", err)
	}
	if m.AtomCount() != 3 {
		t.Errorf("atom count = %d, want 3", m.AtomCount())
	}
	// The mirrored CONECT must not create a duplicate bond.
	if m.BondCount() != 2 {
		t.Errorf("bond count = %d, want 2", m.BondCount())
	}
	if m.Atom(0).Element != periodic.Oxygen {
		t.Errorf("first atom element = %v, want oxygen", m.Atom(0).Element)
	}
	if m.Atom(1).Position[0] != 0.96 {
		t.Errorf("second atom x = %v, want 0.96", m.Atom(1).Position[0])
	}
}

func TestLoadPDBRejectsUnknownAtoms(t *testing.T) {
	const src = `CONECT    1    2
`
	if _, err := LoadPDB(strings.NewReader(src), "bad"); err == nil {
		t.Error("CONECT against missing atoms accepted")
	}
}

func TestRelaxSeparatesOverlappingAtoms(t *testing.T) {
	m := NewMolecule("pair")
	a := m.AddAtom(periodic.Carbon, [3]float32{0, 0, 0})
	b := m.AddAtom(periodic.Carbon, [3]float32{0.5, 0, 0})
	_ = m.AddBond(a, b, BondOrderSingle)

	iters := m.Relax(2000)
	if iters == 0 {
		t.Fatal("relax did nothing")
	}

	pa := m.Atom(a).Position
	pb := m.Atom(b).Position
	dx := float64(pb[0] - pa[0])
	dy := float64(pb[1] - pa[1])
	dz := float64(pb[2] - pa[2])
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	// The spring should carry the pair close to the rest length.
	if math.Abs(dist-float64(relaxRestLength)) > 0.05 {
		t.Errorf("relaxed distance = %v, want ~%v", dist, relaxRestLength)
	}
}

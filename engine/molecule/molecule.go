// Package molecule models a molecular structure as an undirected graph of
// atoms and bonds and produces the flat GPU records the renderer pulls from
// its storage buffers.
package molecule

import (
	"fmt"
	"sync"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/periodic"
)

// BondOrder is the bond multiplicity. Carried through to the GPU record but
// not yet consumed by any shading path; reserved for multi-bond display.
type BondOrder uint8

const (
	BondOrderSingle BondOrder = 1
	BondOrderDouble BondOrder = 2
	BondOrderTriple BondOrder = 3
)

// Atom is one node of the molecule graph.
type Atom struct {
	Element  periodic.Element
	Position [3]float32
}

// Bond is one undirected edge of the molecule graph, referencing atoms by
// their stable indices.
type Bond struct {
	A, B  int
	Order BondOrder
}

// molecule is the implementation of the Molecule interface.
type molecule struct {
	mu *sync.Mutex

	name  string
	atoms []Atom
	bonds []Bond

	// edge set for duplicate detection, keyed by the ordered index pair
	edges map[[2]int]struct{}
}

// Molecule is an editable molecular graph. Atom indices are stable for the
// lifetime of the molecule; there is no atom removal.
type Molecule interface {
	// Name returns the display name of the molecule.
	//
	// Returns:
	//   - string: the molecule name
	Name() string

	// AddAtom appends an atom and returns its stable index.
	//
	// Parameters:
	//   - element: the atom's element
	//   - position: world-space position
	//
	// Returns:
	//   - int: the new atom's index
	AddAtom(element periodic.Element, position [3]float32) int

	// AddBond connects two atoms with the given multiplicity.
	// Self-bonds, out-of-range indices, and duplicate edges are rejected.
	//
	// Parameters:
	//   - a, b: atom indices to connect
	//   - order: bond multiplicity
	//
	// Returns:
	//   - error: error if the edge is invalid or already present
	AddBond(a, b int, order BondOrder) error

	// AtomCount returns the number of atoms.
	AtomCount() int

	// BondCount returns the number of bonds.
	BondCount() int

	// Atom returns a copy of the atom at the given index.
	Atom(i int) Atom

	// Atoms returns a copy of the atom list.
	Atoms() []Atom

	// Bonds returns a copy of the bond list.
	Bonds() []Bond

	// Neighbors returns the indices of atoms bonded to atom i.
	Neighbors(i int) []int

	// SetPosition moves the atom at index i.
	SetPosition(i int, position [3]float32)

	// Bounds returns the axis-aligned bounding box of all atom positions.
	// The second return is false for an empty molecule.
	Bounds() (common.BoundingBox, bool)

	// AtomReprs snapshots the atoms into GPU records.
	//
	// Returns:
	//   - []GPUAtom: one 16-byte record per atom, in index order
	AtomReprs() []GPUAtom

	// BondReprs snapshots the bonds into GPU records with resolved endpoint
	// positions.
	//
	// Returns:
	//   - []GPUBond: one 48-byte record per bond, in insertion order
	BondReprs() []GPUBond

	// Relax runs the toy force relaxation over the atom positions.
	// See dynamics.go for the force model.
	//
	// Parameters:
	//   - maxIterations: iteration cap (<= 0 uses the default)
	//
	// Returns:
	//   - int: the number of iterations performed
	Relax(maxIterations int) int
}

var _ Molecule = &molecule{}

// NewMolecule creates an empty molecule with the given display name.
//
// Parameters:
//   - name: display name (used for labels and logging)
//
// Returns:
//   - Molecule: the new empty molecule
func NewMolecule(name string) Molecule {
	return &molecule{
		mu:    &sync.Mutex{},
		name:  name,
		edges: make(map[[2]int]struct{}),
	}
}

func (m *molecule) Name() string {
	return m.name
}

func (m *molecule) AddAtom(element periodic.Element, position [3]float32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.atoms = append(m.atoms, Atom{Element: element, Position: position})
	return len(m.atoms) - 1
}

func (m *molecule) AddBond(a, b int, order BondOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a == b {
		return fmt.Errorf("bond endpoints must differ (got %d-%d)", a, b)
	}
	if a < 0 || a >= len(m.atoms) || b < 0 || b >= len(m.atoms) {
		return fmt.Errorf("bond %d-%d references a missing atom (have %d atoms)", a, b, len(m.atoms))
	}

	key := orderedPair(a, b)
	if _, exists := m.edges[key]; exists {
		return fmt.Errorf("bond %d-%d already exists", a, b)
	}
	m.edges[key] = struct{}{}
	m.bonds = append(m.bonds, Bond{A: a, B: b, Order: order})
	return nil
}

func (m *molecule) AtomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.atoms)
}

func (m *molecule) BondCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bonds)
}

func (m *molecule) Atom(i int) Atom {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.atoms[i]
}

func (m *molecule) Atoms() []Atom {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Atom, len(m.atoms))
	copy(out, m.atoms)
	return out
}

func (m *molecule) Bonds() []Bond {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bond, len(m.bonds))
	copy(out, m.bonds)
	return out
}

func (m *molecule) Neighbors(i int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, b := range m.bonds {
		switch i {
		case b.A:
			out = append(out, b.B)
		case b.B:
			out = append(out, b.A)
		}
	}
	return out
}

func (m *molecule) SetPosition(i int, position [3]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.atoms[i].Position = position
}

func (m *molecule) Bounds() (common.BoundingBox, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.atoms) == 0 {
		return common.BoundingBox{}, false
	}
	box := common.NewBoundingBox(m.atoms[0].Position)
	for _, a := range m.atoms[1:] {
		box = box.Expand(a.Position)
	}
	return box, true
}

func (m *molecule) AtomReprs() []GPUAtom {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GPUAtom, len(m.atoms))
	for i, a := range m.atoms {
		out[i] = GPUAtom{Position: a.Position, Kind: uint32(a.Element) & periodic.KindMask}
	}
	return out
}

func (m *molecule) BondReprs() []GPUBond {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GPUBond, len(m.bonds))
	for i, b := range m.bonds {
		sa := m.atoms[b.A].Position
		sb := m.atoms[b.B].Position
		out[i] = GPUBond{
			Start: [4]float32{sa[0], sa[1], sa[2], 1},
			End:   [4]float32{sb[0], sb[1], sb[2], 1},
			Order: uint32(b.Order),
		}
	}
	return out
}

// orderedPair normalizes an undirected edge key so that (a,b) and (b,a)
// collide in the edge set.
func orderedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

package scene

import (
	"sync"

	"github.com/shinzlet/atomcad-go/common"
)

// assemblyImpl is the implementation of the Assembly interface.
type assemblyImpl struct {
	mu *sync.Mutex

	name     string
	position [3]float32
	rotation [3]float32
	scale    float32

	parts    []Part
	children []Assembly
}

// Assembly is a named group within a scene's part tree. It carries its own
// local transform and contains parts and nested assemblies; walking the tree
// accumulates transforms so that moving an assembly moves everything inside
// it.
type Assembly interface {
	// Name returns the assembly's identifier.
	Name() string

	// Position returns the assembly's local translation.
	Position() [3]float32

	// SetPosition sets the assembly's local translation.
	//
	// Parameters:
	//   - p: the new translation
	SetPosition(p [3]float32)

	// Rotation returns the assembly's local Euler rotation in radians.
	Rotation() [3]float32

	// SetRotation sets the assembly's local Euler rotation in radians.
	//
	// Parameters:
	//   - r: rotation angles around the x, y, and z axes
	SetRotation(r [3]float32)

	// Scale returns the assembly's uniform scale factor.
	Scale() float32

	// SetScale sets the assembly's uniform scale factor.
	//
	// Parameters:
	//   - s: the scale factor (1 = unscaled)
	SetScale(s float32)

	// AddPart appends a part to this assembly.
	//
	// Parameters:
	//   - p: the part to add
	AddPart(p Part)

	// AddAssembly nests another assembly inside this one.
	//
	// Parameters:
	//   - a: the assembly to nest
	AddAssembly(a Assembly)

	// Parts returns a copy of this assembly's direct parts.
	Parts() []Part

	// Assemblies returns a copy of this assembly's direct child assemblies.
	Assemblies() []Assembly

	// Walk visits every part in the subtree in depth-first order, passing the
	// part's accumulated world transform: the product of every ancestor
	// assembly's local transform and the part's own.
	//
	// Parameters:
	//   - visit: called once per part with its world placement matrix
	Walk(visit func(p Part, transform [16]float32))
}

var _ Assembly = &assemblyImpl{}

// NewAssembly creates an empty assembly with an identity local transform.
//
// Parameters:
//   - name: the assembly's identifier
//
// Returns:
//   - Assembly: the new empty assembly
func NewAssembly(name string) Assembly {
	return &assemblyImpl{
		mu:    &sync.Mutex{},
		name:  name,
		scale: 1,
	}
}

func (a *assemblyImpl) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

func (a *assemblyImpl) Position() [3]float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

func (a *assemblyImpl) SetPosition(p [3]float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = p
}

func (a *assemblyImpl) Rotation() [3]float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rotation
}

func (a *assemblyImpl) SetRotation(r [3]float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rotation = r
}

func (a *assemblyImpl) Scale() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scale
}

func (a *assemblyImpl) SetScale(s float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scale = s
}

func (a *assemblyImpl) AddPart(p Part) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts = append(a.parts, p)
}

func (a *assemblyImpl) AddAssembly(child Assembly) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.children = append(a.children, child)
}

func (a *assemblyImpl) Parts() []Part {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Part, len(a.parts))
	copy(out, a.parts)
	return out
}

func (a *assemblyImpl) Assemblies() []Assembly {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Assembly, len(a.children))
	copy(out, a.children)
	return out
}

func (a *assemblyImpl) Walk(visit func(p Part, transform [16]float32)) {
	var identity [16]float32
	common.Identity(identity[:])
	a.walkFrom(identity, visit)
}

// walkFrom recurses through the subtree, accumulating transforms. Snapshots
// of the part and child lists are taken under the lock; the matrix math and
// recursion run outside it so visit callbacks may touch the tree.
func (a *assemblyImpl) walkFrom(parent [16]float32, visit func(p Part, transform [16]float32)) {
	a.mu.Lock()
	var local [16]float32
	common.BuildModelMatrix(local[:],
		a.position[0], a.position[1], a.position[2],
		a.rotation[0], a.rotation[1], a.rotation[2],
		a.scale, a.scale, a.scale,
	)
	parts := make([]Part, len(a.parts))
	copy(parts, a.parts)
	children := make([]Assembly, len(a.children))
	copy(children, a.children)
	a.mu.Unlock()

	var world [16]float32
	common.Mul4(world[:], parent[:], local[:])

	for _, p := range parts {
		var partLocal, final [16]float32
		if impl, ok := p.(*partImpl); ok {
			impl.localTransform(partLocal[:])
		} else {
			pos, rot, scale := p.Position(), p.Rotation(), p.Scale()
			common.BuildModelMatrix(partLocal[:],
				pos[0], pos[1], pos[2],
				rot[0], rot[1], rot[2],
				scale, scale, scale,
			)
		}
		common.Mul4(final[:], world[:], partLocal[:])
		visit(p, final)
	}

	for _, child := range children {
		if impl, ok := child.(*assemblyImpl); ok {
			impl.walkFrom(world, visit)
		}
	}
}

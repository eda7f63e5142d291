package scene

import (
	"sync"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/molecule"
	"github.com/shinzlet/atomcad-go/engine/renderer/bind_group_provider"
)

// partImpl is the implementation of the Part interface.
type partImpl struct {
	mu *sync.Mutex

	name     string
	mol      molecule.Molecule
	position [3]float32
	rotation [3]float32
	scale    float32
	visible  bool

	// dirty marks the molecule's GPU buffers for re-upload on the next
	// PrepareCompute. Set on creation and by MarkDirty after edits.
	dirty bool

	// GPU state, owned by the scene. Populated lazily on the first frame the
	// part is reachable from the scene's assembly tree.
	gpuReady     bool
	atomCapacity int
	bondCapacity int

	moleculeBGP bind_group_provider.BindGroupProvider // atom storage + element table
	bondBGP     bind_group_provider.BindGroupProvider // bond storage, nil when the part has no bonds
	instanceBGP bind_group_provider.BindGroupProvider // per-instance transform vertex buffer

	// stagedAtomData and stagedBondData hold marshaled buffer contents between
	// the parallel prep phase and the coalesced GPU write.
	stagedAtomData []byte
	stagedBondData []byte
}

// Part is a placeable molecule within a scene's assembly tree: a molecule
// plus a local transform (position, Euler rotation, uniform scale). The scene
// owns each part's GPU resources and initializes them lazily on the first
// frame the part is reachable from the root assembly.
//
// Populate the molecule before the part's first rendered frame; the scene
// sizes the GPU storage buffers from the atom and bond counts it sees then,
// and rebuilds them automatically if the molecule later grows.
type Part interface {
	// Name returns the part's identifier, used for GPU resource labels.
	Name() string

	// Molecule returns the part's molecule.
	Molecule() molecule.Molecule

	// Position returns the part's local translation.
	Position() [3]float32

	// SetPosition sets the part's local translation.
	//
	// Parameters:
	//   - p: the new translation
	SetPosition(p [3]float32)

	// Rotation returns the part's local Euler rotation in radians.
	Rotation() [3]float32

	// SetRotation sets the part's local Euler rotation in radians.
	//
	// Parameters:
	//   - r: rotation angles around the x, y, and z axes
	SetRotation(r [3]float32)

	// Scale returns the part's uniform scale factor.
	Scale() float32

	// SetScale sets the part's uniform scale factor.
	//
	// Parameters:
	//   - s: the scale factor (1 = unscaled)
	SetScale(s float32)

	// Visible returns whether the part is drawn.
	Visible() bool

	// SetVisible shows or hides the part without removing it from the tree.
	//
	// Parameters:
	//   - visible: true to draw the part
	SetVisible(visible bool)

	// MarkDirty flags the molecule's GPU buffers for re-upload on the next
	// frame. Call after editing atom positions or graph structure, e.g. after
	// a Relax step. Transform changes do not require this; the instance
	// buffer is rewritten every frame.
	MarkDirty()
}

var _ Part = &partImpl{}

// NewPart creates a Part wrapping the given molecule with an identity local
// transform.
//
// Parameters:
//   - name: the part's identifier (used for GPU resource labels)
//   - mol: the molecule to place (must not be nil)
//
// Returns:
//   - Part: the new part, visible and marked for upload
func NewPart(name string, mol molecule.Molecule, options ...PartBuilderOption) Part {
	if mol == nil {
		panic("scene: NewPart requires a non-nil Molecule")
	}
	p := &partImpl{
		mu:      &sync.Mutex{},
		name:    name,
		mol:     mol,
		scale:   1,
		visible: true,
		dirty:   true,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// PartBuilderOption is a functional option applied to a Part during construction via NewPart.
type PartBuilderOption func(*partImpl)

// WithPartPosition sets the part's initial local translation.
//
// Parameters:
//   - p: the translation
//
// Returns:
//   - PartBuilderOption: option function to apply
func WithPartPosition(p [3]float32) PartBuilderOption {
	return func(part *partImpl) {
		part.position = p
	}
}

// WithPartRotation sets the part's initial Euler rotation in radians.
//
// Parameters:
//   - r: rotation angles around the x, y, and z axes
//
// Returns:
//   - PartBuilderOption: option function to apply
func WithPartRotation(r [3]float32) PartBuilderOption {
	return func(part *partImpl) {
		part.rotation = r
	}
}

// WithPartScale sets the part's initial uniform scale factor.
//
// Parameters:
//   - s: the scale factor (1 = unscaled)
//
// Returns:
//   - PartBuilderOption: option function to apply
func WithPartScale(s float32) PartBuilderOption {
	return func(part *partImpl) {
		part.scale = s
	}
}

func (p *partImpl) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *partImpl) Molecule() molecule.Molecule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mol
}

func (p *partImpl) Position() [3]float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *partImpl) SetPosition(pos [3]float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

func (p *partImpl) Rotation() [3]float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rotation
}

func (p *partImpl) SetRotation(r [3]float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotation = r
}

func (p *partImpl) Scale() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale
}

func (p *partImpl) SetScale(s float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scale = s
}

func (p *partImpl) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *partImpl) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = visible
}

func (p *partImpl) MarkDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
}

// takeDirty atomically reads and clears the dirty flag.
func (p *partImpl) takeDirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.dirty
	p.dirty = false
	return d
}

// localTransform writes the part's local placement matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (p *partImpl) localTransform(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	common.BuildModelMatrix(out,
		p.position[0], p.position[1], p.position[2],
		p.rotation[0], p.rotation[1], p.rotation[2],
		p.scale, p.scale, p.scale,
	)
}

// releaseGPU releases the part's GPU resources so they can be re-created at a
// larger capacity. Caller must ensure no frame is in flight using them.
func (p *partImpl) releaseGPU() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.moleculeBGP != nil {
		p.moleculeBGP.Release()
		p.moleculeBGP = nil
	}
	if p.bondBGP != nil {
		p.bondBGP.Release()
		p.bondBGP = nil
	}
	if p.instanceBGP != nil {
		p.instanceBGP.Release()
		p.instanceBGP = nil
	}
	p.gpuReady = false
	p.atomCapacity = 0
	p.bondCapacity = 0
	p.dirty = true
}

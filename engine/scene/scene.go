package scene

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/camera"
	"github.com/shinzlet/atomcad-go/engine/impostor"
	"github.com/shinzlet/atomcad-go/engine/molecule"
	"github.com/shinzlet/atomcad-go/engine/periodic"
	"github.com/shinzlet/atomcad-go/engine/renderer"
	"github.com/shinzlet/atomcad-go/engine/renderer/bind_group_provider"
	"github.com/shinzlet/atomcad-go/engine/renderer/pipeline"
	"github.com/shinzlet/atomcad-go/engine/renderer/shader"
)

// drawItem is one part reachable from the root assembly this frame, paired
// with its accumulated world transform. Rebuilt by PrepareCompute and
// consumed by DrawCalls.
type drawItem struct {
	part      *partImpl
	transform [16]float32
}

// Scene manages an assembly tree of molecular parts with a Camera and
// Renderer for rendering. Each part renders as procedural impostor geometry:
// sphere billboards for atoms and the scene's selected bond style for bonds.
// The scene owns all per-part GPU resources, registers the impostor pipelines
// on construction, and rebuilds part storage buffers off the render goroutine
// through a persistent worker pool.
// Scenes can be hot-swapped via the Active flag. Thread-safe for concurrent
// access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// SetRenderer replaces the scene's renderer.
	//
	// Parameters:
	//   - r: the new renderer
	SetRenderer(r renderer.Renderer)

	// Root returns the scene's root assembly. Parts and nested assemblies
	// added anywhere in the tree are picked up automatically; their GPU
	// resources are initialized on the first frame they are reachable.
	Root() Assembly

	// AddPart appends a part to the root assembly.
	//
	// Parameters:
	//   - p: the part to add
	AddPart(p Part)

	// AddAssembly nests an assembly under the root assembly.
	//
	// Parameters:
	//   - a: the assembly to add
	AddAssembly(a Assembly)

	// PartCount returns the number of parts reachable from the root assembly.
	//
	// Returns:
	//   - int: the part count
	PartCount() int

	// BondStyle returns the scene's active bond rendering style.
	//
	// Returns:
	//   - impostor.BondStyle: the active style
	BondStyle() impostor.BondStyle

	// SetBondStyle switches the bond rendering style. Both style pipelines
	// are registered up front, so switching takes effect on the next frame
	// with no GPU resource churn.
	//
	// Parameters:
	//   - style: the style to render bonds with
	SetBondStyle(style impostor.BondStyle)

	// ElementTable returns the element visual table shared by every part in
	// the scene. Changes take effect after MarkDirty on the affected parts.
	//
	// Returns:
	//   - *periodic.Table: the scene's element table
	ElementTable() *periodic.Table

	// CullingDisabled returns whether per-part frustum culling is disabled.
	//
	// Returns:
	//   - bool: true if culling is disabled
	CullingDisabled() bool

	// SetCullingDisabled enables or disables per-part frustum culling. When
	// disabled, every visible part is drawn regardless of camera placement.
	//
	// Parameters:
	//   - disabled: true to disable culling, false to enable it
	SetCullingDisabled(disabled bool)

	// PrepareCompute updates camera matrices, walks the assembly tree,
	// initializes GPU resources for new parts, re-marshals dirty molecule
	// buffers in parallel, and uploads all staged writes in one submission.
	// Must be called within a BeginComputeFrame/EndComputeFrame block on the
	// renderer.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareCompute(deltaTime float32)

	// DrawCalls issues the impostor draw calls for every visible,
	// frustum-intersecting part: 3 vertices per atom and 3 or 6 vertices per
	// bond depending on the active style.
	// Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: error if a draw call fails
	DrawCalls() error
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer

	root Assembly

	bondStyle  impostor.BondStyle
	strategies map[impostor.BondStyle]impostor.BondStrategy

	table     *periodic.Table
	tableData []byte  // marshaled once; uploaded into each part's molecule bind group
	cullPad   float32 // widest element radius, padding for part bounding spheres

	// Shaders retained for bind group layout discovery when initializing
	// per-part GPU resources.
	atomVertexShader shader.Shader
	bondVertexShader shader.Shader

	cullingDisabled bool

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	drawItems          []drawItem
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider

	// computePool manages a bounded set of reusable goroutines for the
	// parallel buffer marshal phase of PrepareCompute. Workers persist across
	// frames, avoiding per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer. Both are
// required and NewScene panics if either is nil. Construction registers the
// atom pipeline and both bond style pipelines with the renderer and
// initializes the camera's bind group from the atom vertex shader's layout.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		active:             false,
		cam:                cam,
		r:                  r,
		root:               NewAssembly(name + "_root"),
		bondStyle:          impostor.BondStyleRoundCap,
		table:              periodic.NewTable(),
		computeWorkers:     max(runtime.NumCPU()-1, 1),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	// Queue size of 256 accommodates large assembly trees with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	s.tableData = s.table.Marshal()
	s.cullPad = widestRadius(s.table)

	s.registerPipelines()

	return s
}

// registerPipelines builds the atom pipeline and both bond style pipelines
// from the embedded impostor sources, registers them with the renderer, and
// initializes the camera's bind group from the atom vertex shader's camera
// group layout.
func (s *scene) registerPipelines() {
	s.atomVertexShader = shader.NewShaderFromSource("atom_vertex", shader.ShaderTypeVertex, impostor.AtomVertexShaderSource)
	atomFragmentShader := shader.NewShaderFromSource("atom_fragment", shader.ShaderTypeFragment, impostor.AtomFragmentShaderSource)

	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(impostor.AtomPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(s.atomVertexShader),
			pipeline.WithFragmentShader(atomFragmentShader),
		),
	}

	s.strategies = make(map[impostor.BondStyle]impostor.BondStrategy, 2)
	for _, style := range []impostor.BondStyle{impostor.BondStyleRoundCap, impostor.BondStyleRectangle} {
		strategy := impostor.NewBondStrategy(style)
		s.strategies[style] = strategy

		vs := shader.NewShaderFromSource(strategy.PipelineKey()+"_vertex", shader.ShaderTypeVertex, strategy.VertexShaderSource())
		fs := shader.NewShaderFromSource(strategy.PipelineKey()+"_fragment", shader.ShaderTypeFragment, strategy.FragmentShaderSource())
		pipelines = append(pipelines, pipeline.NewPipeline(strategy.PipelineKey(), pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
		))

		// Both strategies declare the same bond storage group; either vertex
		// shader's layout works for per-part bond bind groups.
		if s.bondVertexShader == nil {
			s.bondVertexShader = vs
		}
	}

	if err := s.r.RegisterPipelines(pipelines...); err != nil {
		panic(fmt.Sprintf("scene: failed to register impostor pipelines: %v", err))
	}

	if bgp := s.cam.BindGroupProvider(); bgp != nil {
		if err := s.r.InitBindGroup(bgp, s.atomVertexShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init camera bind group: %v", err))
		}
	}
}

// widestRadius scans the element table for the largest sphere radius. Used to
// pad part bounding spheres so culling accounts for atom extents beyond the
// bare position bounds.
func widestRadius(t *periodic.Table) float32 {
	widest := impostor.BondHalfWidth
	for kind := uint32(0); kind < periodic.TableSize; kind++ {
		if r := t.Lookup(kind).Radius; r > widest {
			widest = r
		}
	}
	return widest
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) Root() Assembly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *scene) AddPart(p Part) {
	s.Root().AddPart(p)
}

func (s *scene) AddAssembly(a Assembly) {
	s.Root().AddAssembly(a)
}

func (s *scene) PartCount() int {
	count := 0
	s.Root().Walk(func(Part, [16]float32) {
		count++
	})
	return count
}

func (s *scene) BondStyle() impostor.BondStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bondStyle
}

func (s *scene) SetBondStyle(style impostor.BondStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bondStyle = style
}

func (s *scene) ElementTable() *periodic.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) PrepareCompute(deltaTime float32) {
	_ = deltaTime

	s.mu.Lock()
	cam := s.cam
	r := s.r
	root := s.root
	s.mu.Unlock()

	if cam == nil || r == nil {
		return
	}

	cam.Update()

	// Rebuild the frame's draw item list by walking the assembly tree with
	// accumulated transforms.
	items := s.drawItems[:0]
	root.Walk(func(p Part, transform [16]float32) {
		impl, ok := p.(*partImpl)
		if !ok {
			return
		}
		items = append(items, drawItem{part: impl, transform: transform})
	})

	// Serial pre-pass: initialize GPU resources for parts seen for the first
	// time, and rebuild parts whose molecule outgrew its buffers.
	for _, item := range items {
		p := item.part
		p.mu.Lock()
		ready := p.gpuReady
		atomCap, bondCap := p.atomCapacity, p.bondCapacity
		p.mu.Unlock()

		if ready && (p.mol.AtomCount() > atomCap || p.mol.BondCount() > bondCap) {
			p.releaseGPU()
			ready = false
		}
		if !ready {
			if err := s.initPart(p); err != nil {
				log.Printf("scene %q: init part %q: %v", s.Name(), p.Name(), err)
			}
		}
	}

	// Parallel phase: fan out buffer marshaling for dirty parts across the
	// compute pool. Workers are reused across frames; a WaitGroup provides
	// the per-frame barrier since pool.Wait() blocks until workers idle-exit,
	// which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	taskID := 0
	for _, item := range items {
		p := item.part
		p.mu.Lock()
		ready := p.gpuReady
		p.mu.Unlock()
		if !ready || !p.takeDirty() {
			continue
		}

		wg.Add(1)
		pCap := p // capture for closure
		id := taskID
		taskID++
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()

				atomData := molecule.MarshalAtomBuffer(pCap.mol.AtomReprs())
				bondData := molecule.MarshalBondBuffer(pCap.mol.BondReprs())

				pCap.mu.Lock()
				pCap.stagedAtomData = atomData
				pCap.stagedBondData = bondData
				pCap.mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Coalesced GPU submission: the camera uniform plus every staged part
	// buffer in a single WriteBuffers call.
	uniform := cam.Uniform()
	writes := s.writePool[:0]
	writes = append(writes, bind_group_provider.BufferWrite{
		Provider: cam.BindGroupProvider(),
		Binding:  0,
		Offset:   0,
		Data:     uniform.Marshal(),
	})
	for _, item := range items {
		p := item.part
		p.mu.Lock()
		if p.stagedAtomData != nil && p.moleculeBGP != nil {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: p.moleculeBGP,
				Binding:  0,
				Offset:   0,
				Data:     p.stagedAtomData,
			})
			p.stagedAtomData = nil
		}
		if p.stagedBondData != nil && p.bondBGP != nil {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: p.bondBGP,
				Binding:  0,
				Offset:   0,
				Data:     p.stagedBondData,
			})
			p.stagedBondData = nil
		}
		p.mu.Unlock()
	}
	r.WriteBuffers(writes)

	// Instance transforms are rewritten every frame; an ancestor assembly
	// may have moved even when the part itself has not.
	for i := range items {
		p := items[i].part
		p.mu.Lock()
		inst := p.instanceBGP
		p.mu.Unlock()
		if inst != nil {
			r.WriteInstanceBuffer(inst, common.SliceToBytes(items[i].transform[:]))
		}
	}

	s.mu.Lock()
	s.drawItems = items
	s.writePool = writes
	s.mu.Unlock()
}

// initPart creates the GPU resources for one part: the molecule bind group
// (atom storage buffer sized to the molecule plus the shared element table),
// the bond bind group when the molecule has bonds, and the per-instance
// transform vertex buffer. The element table contents are uploaded once here.
func (s *scene) initPart(p *partImpl) error {
	mol := p.Molecule()
	atomCount := mol.AtomCount()
	bondCount := mol.BondCount()
	if atomCount == 0 {
		return fmt.Errorf("molecule %q has no atoms", mol.Name())
	}

	var atom molecule.GPUAtom
	var bond molecule.GPUBond

	// Bindings fixed by the shader annotations: group 1 binding 0 is the
	// atom storage buffer, binding 1 the element table.
	moleculeBGP := bind_group_provider.NewBindGroupProvider(s.Name() + "_" + p.Name() + "_atoms")
	atomOverrides := map[int]uint64{
		0: uint64(molecule.AtomBufferHeaderSize + atomCount*atom.Size()),
	}
	if err := s.r.InitBindGroup(moleculeBGP, s.atomVertexShader.BindGroupLayoutDescriptor(1), nil, atomOverrides); err != nil {
		return fmt.Errorf("molecule bind group: %w", err)
	}
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: moleculeBGP, Binding: 1, Offset: 0, Data: s.tableData},
	})

	var bondBGP bind_group_provider.BindGroupProvider
	if bondCount > 0 {
		bondBGP = bind_group_provider.NewBindGroupProvider(s.Name() + "_" + p.Name() + "_bonds")
		bondOverrides := map[int]uint64{
			0: uint64(bondCount * bond.Size()),
		}
		if err := s.r.InitBindGroup(bondBGP, s.bondVertexShader.BindGroupLayoutDescriptor(1), nil, bondOverrides); err != nil {
			return fmt.Errorf("bond bind group: %w", err)
		}
	}

	instanceBGP := bind_group_provider.NewBindGroupProvider(s.Name() + "_" + p.Name() + "_instance")
	var identity [16]float32
	common.Identity(identity[:])
	if err := s.r.InitInstanceBuffer(instanceBGP, common.SliceToBytes(identity[:])); err != nil {
		return fmt.Errorf("instance buffer: %w", err)
	}

	p.mu.Lock()
	p.moleculeBGP = moleculeBGP
	p.bondBGP = bondBGP
	p.instanceBGP = instanceBGP
	p.atomCapacity = atomCount
	p.bondCapacity = bondCount
	p.gpuReady = true
	p.dirty = true
	p.mu.Unlock()
	return nil
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	cam := s.cam
	r := s.r
	items := s.drawItems
	style := s.bondStyle
	cullingDisabled := s.cullingDisabled
	cullPad := s.cullPad
	s.mu.RUnlock()

	if cam == nil || r == nil {
		return nil
	}

	var frustum common.Frustum
	if !cullingDisabled {
		vp := cam.ViewProjectionMatrix()
		frustum = common.ExtractFrustumFromMatrix(vp[:])
	}

	strategy := s.strategies[style]
	camBGP := cam.BindGroupProvider()

	for i := range items {
		p := items[i].part
		if !p.Visible() {
			continue
		}

		p.mu.Lock()
		ready := p.gpuReady
		atomCount := p.atomCapacity
		bondCount := p.bondCapacity
		moleculeBGP := p.moleculeBGP
		bondBGP := p.bondBGP
		instanceBGP := p.instanceBGP
		p.mu.Unlock()
		if !ready || atomCount == 0 {
			continue
		}

		if !cullingDisabled {
			center, radius, ok := partBoundingSphere(p, items[i].transform, cullPad)
			if ok && !frustum.IntersectsSphere(center, radius) {
				continue
			}
		}

		bindGroups := append(s.drawBindGroupsPool[:0], camBGP, moleculeBGP)
		if err := r.DrawCall(impostor.AtomPipelineKey, instanceBGP, impostor.AtomVertsPerPrimitive*uint32(atomCount), 1, bindGroups); err != nil {
			return err
		}

		if bondCount > 0 && bondBGP != nil {
			bindGroups = append(s.drawBindGroupsPool[:0], camBGP, bondBGP)
			if err := r.DrawCall(strategy.PipelineKey(), instanceBGP, strategy.VertsPerBond()*uint32(bondCount), 1, bindGroups); err != nil {
				return err
			}
		}
	}

	return nil
}

// partBoundingSphere computes a world-space bounding sphere for a part: the
// molecule's position bounds transformed by the part's world matrix, padded
// by the widest element radius so atom surfaces are covered. The third return
// is false for an empty molecule.
func partBoundingSphere(p *partImpl, transform [16]float32, pad float32) (center [3]float32, radius float32, ok bool) {
	box, ok := p.Molecule().Bounds()
	if !ok {
		return center, 0, false
	}

	c := box.Center()
	world := common.TransformVec4(transform[:], [4]float32{c[0], c[1], c[2], 1})
	center = [3]float32{world[0], world[1], world[2]}

	// Uniform part scales mean any column length works, but assemblies can
	// compound; take the largest column to stay conservative.
	scale := common.Length3([3]float32{transform[0], transform[1], transform[2]})
	for col := 1; col < 3; col++ {
		l := common.Length3([3]float32{transform[col*4], transform[col*4+1], transform[col*4+2]})
		if l > scale {
			scale = l
		}
	}

	radius = (box.Radius() + pad) * scale
	return center, radius, true
}

package impostor

import (
	_ "embed"
)

// Annotated WGSL sources for the impostor programs. They are pre-processed
// by the shader package (struct injection, bind group declarations) before
// module creation; see engine/renderer/shader.

//go:embed assets/atom-vert.wgsl
var AtomVertexShaderSource string

//go:embed assets/atom-frag.wgsl
var AtomFragmentShaderSource string

//go:embed assets/bond-round-vert.wgsl
var BondRoundVertexShaderSource string

//go:embed assets/bond-round-frag.wgsl
var BondRoundFragmentShaderSource string

//go:embed assets/bond-rect-vert.wgsl
var BondRectVertexShaderSource string

//go:embed assets/bond-rect-frag.wgsl
var BondRectFragmentShaderSource string

// AtomPipelineKey is the pipeline cache key of the atom sphere pass.
const AtomPipelineKey = "atom_sphere"

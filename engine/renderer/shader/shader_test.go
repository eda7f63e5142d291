package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"

	"github.com/shinzlet/atomcad-go/engine/impostor"
)

func TestPreProcessorGeneratesBindingDeclarations(t *testing.T) {
	pp := NewPreProcessor()

	src := strings.Join([]string{
		"//@atomcad:include camera",
		"//@atomcad:include atom",
		"//@atomcad:group 0 0 storage_uniform camera camera",
		"//@atomcad:group 1 0 storage_read atom_data atom_buffer",
		"@vertex fn vs_main() {}",
	}, "\n")

	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	for _, want := range []string{
		"struct CameraUniform",
		"struct Atom",
		"struct AtomBuffer",
		"@group(0) @binding(0) var<uniform> camera: CameraUniform;",
		"@group(1) @binding(0) var<storage, read> atom_data: AtomBuffer;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("processed source missing %q", want)
		}
	}
	if strings.Contains(out, "@atomcad:") {
		t.Error("processed source still contains @atomcad annotations")
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if decls[0].Type != AnnotationTypeBindingGroup || *decls[0].Group != 0 || *decls[0].Binding != 0 {
		t.Errorf("unexpected first declaration: %+v", decls[0])
	}
	if decls[1].Args[2] != AnnotationArgAtomBuffer {
		t.Errorf("second declaration type arg = %q, want atom_buffer", decls[1].Args[2])
	}
}

func TestPreProcessorRejectsUnknownStructType(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@atomcad:include skeleton"); err == nil {
		t.Error("expected error for unknown include argument")
	}
	if _, err := pp.Process("//@atomcad:group 0 0 storage_uniform foo light"); err == nil {
		t.Error("expected error for unknown group struct type")
	}
	if _, err := pp.Process("//@atomcad:provider 0 0 shadow"); err == nil {
		t.Error("expected error for unknown provider identity")
	}
}

func TestAtomVertexShaderMetadata(t *testing.T) {
	s := NewShaderFromSource("atom_vertex_test", ShaderTypeVertex, impostor.AtomVertexShaderSource)

	if got := s.EntryPoint(); got != "vs_main" {
		t.Errorf("entry point = %q, want vs_main", got)
	}

	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("got %d vertex buffer layouts, want 1", len(layouts))
	}
	layout := layouts[0]
	if layout.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("InstanceInput step mode = %v, want instance", layout.StepMode)
	}
	if layout.ArrayStride != 64 {
		t.Errorf("instance stride = %d, want 64 (mat4x4<f32> as four vec4 rows)", layout.ArrayStride)
	}
	if len(layout.Attributes) != 4 {
		t.Errorf("got %d instance attributes, want 4", len(layout.Attributes))
	}
	for i, attr := range layout.Attributes {
		if attr.Format != wgpu.VertexFormatFloat32x4 {
			t.Errorf("attribute %d format = %v, want float32x4", i, attr.Format)
		}
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d location = %d, want %d", i, attr.ShaderLocation, i)
		}
	}
}

func TestAtomVertexBindGroupLayouts(t *testing.T) {
	s := NewShaderFromSource("atom_vertex_layout_test", ShaderTypeVertex, impostor.AtomVertexShaderSource)

	descs := s.BindGroupLayoutDescriptors()
	if len(descs) != 2 {
		t.Fatalf("got %d bind groups, want 2", len(descs))
	}

	cam := descs[0].Entries
	if len(cam) != 1 || cam[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Fatalf("group 0 should be a single uniform buffer, got %+v", cam)
	}
	if cam[0].Buffer.MinBindingSize != 192 {
		t.Errorf("camera MinBindingSize = %d, want 192", cam[0].Buffer.MinBindingSize)
	}

	mol := descs[1].Entries
	if len(mol) != 2 {
		t.Fatalf("group 1 should have two bindings, got %d", len(mol))
	}
	if mol[0].Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("atom buffer binding type = %v, want read-only storage", mol[0].Buffer.Type)
	}
	if mol[1].Buffer.MinBindingSize != 2048 {
		t.Errorf("periodic table MinBindingSize = %d, want 2048 (128 x 16 bytes)", mol[1].Buffer.MinBindingSize)
	}

	if name := s.BindGroupVarName(1, 0); name != "atom_data" {
		t.Errorf("group 1 binding 0 var name = %q, want atom_data", name)
	}
	if binding, ok := s.BindGroupFromVarName(1, "table"); !ok || binding != 1 {
		t.Errorf("var name lookup for table = (%d, %v), want (1, true)", binding, ok)
	}
}

func TestBondRectFragmentOmitsCameraGroup(t *testing.T) {
	s := NewShaderFromSource("bond_rect_fragment_test", ShaderTypeFragment, impostor.BondRectFragmentShaderSource)

	if got := s.EntryPoint(); got != "fs_main" {
		t.Errorf("entry point = %q, want fs_main", got)
	}
	if descs := s.BindGroupLayoutDescriptors(); len(descs) != 0 {
		t.Errorf("rectangle fragment stage should bind nothing, got %d groups", len(descs))
	}
}

// TestImpostorShaderCompilation runs every impostor shader through naga after
// pre-processing and verifies it produces valid SPIR-V.
func TestImpostorShaderCompilation(t *testing.T) {
	cases := []struct {
		name       string
		shaderType ShaderType
		source     string
	}{
		{"atom_vertex", ShaderTypeVertex, impostor.AtomVertexShaderSource},
		{"atom_fragment", ShaderTypeFragment, impostor.AtomFragmentShaderSource},
		{"bond_round_vertex", ShaderTypeVertex, impostor.BondRoundVertexShaderSource},
		{"bond_round_fragment", ShaderTypeFragment, impostor.BondRoundFragmentShaderSource},
		{"bond_rect_vertex", ShaderTypeVertex, impostor.BondRectVertexShaderSource},
		{"bond_rect_fragment", ShaderTypeFragment, impostor.BondRectFragmentShaderSource},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewShaderFromSource(tc.name, tc.shaderType, tc.source)

			spirvBytes, err := naga.Compile(s.Source())
			if err != nil {
				errStr := err.Error()
				if strings.Contains(errStr, "runtime-sized arrays not yet implemented") {
					t.Skip("Skipping: naga doesn't yet support runtime-sized arrays")
				}
				if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
					t.Skipf("Skipping: naga feature not yet implemented: %v", err)
				}
				if strings.Contains(errStr, "lowering error") || strings.Contains(errStr, "atomic") {
					t.Skipf("Skipping: naga lowering limitation: %v", err)
				}
				t.Fatalf("failed to compile %s: %v", tc.name, err)
			}

			if len(spirvBytes) < 4 {
				t.Fatal("SPIR-V too short")
			}
			magic := uint32(spirvBytes[0]) |
				uint32(spirvBytes[1])<<8 |
				uint32(spirvBytes[2])<<16 |
				uint32(spirvBytes[3])<<24
			if magic != 0x07230203 {
				t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", magic)
			}
		})
	}
}

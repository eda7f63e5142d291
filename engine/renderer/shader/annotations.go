// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @atomcad: that drive automatic struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and Scene to wire GPU resources without manual low-level plumbing.
//
// See ANNOTATIONS_README.md at the repository root for full syntax documentation and examples.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@atomcad:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@atomcad:include <struct_type>
	//
	// Example: //@atomcad:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling the
	// Scene to semantically match bindings to resource providers without string lookups.
	//
	// Syntax: //@atomcad:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@atomcad:group 1 0 storage_read atom_data atom_buffer
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers, flat arrays of primitives) which have no
	// corresponding registered struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@atomcad:provider <group> <binding> <provider_identity>
	//   //@atomcad:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@atomcad:provider 0 0 blit color_texture
	//   //@atomcad:provider 0 1 blit color_sampler
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @atomcad: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption by the Scene during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "blit"), [1] = binding role (optional, e.g. "color_texture")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @atomcad:include annotations
// (to inject the struct source) and in @atomcad:group annotations (as the type field, optionally
// wrapped in array<>). Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgAtom identifies the Atom record struct for vertex pulling.
	// Including it also brings in the AtomBuffer container definition.
	// Source: engine/molecule/assets/atom_buffer.wgsl
	AnnotationArgAtom AnnotationArg = "atom"

	// AnnotationArgAtomBuffer identifies the AtomBuffer storage container struct.
	// Used as the type argument of @atomcad:group declarations for atom storage bindings.
	// Source: engine/molecule/assets/atom_buffer.wgsl
	AnnotationArgAtomBuffer AnnotationArg = "atom_buffer"

	// AnnotationArgBond identifies the Bond record struct for vertex pulling.
	// Including it also brings in the BondBuffer container definition.
	// Source: engine/molecule/assets/bond_buffer.wgsl
	AnnotationArgBond AnnotationArg = "bond"

	// AnnotationArgBondBuffer identifies the BondBuffer storage container struct.
	// Used as the type argument of @atomcad:group declarations for bond storage bindings.
	// Source: engine/molecule/assets/bond_buffer.wgsl
	AnnotationArgBondBuffer AnnotationArg = "bond_buffer"

	// AnnotationArgElement identifies the ElementVisual struct holding per-element
	// color and radius. Including it also brings in the PeriodicTable definition.
	// Source: engine/periodic/assets/periodic_table.wgsl
	AnnotationArgElement AnnotationArg = "element"

	// AnnotationArgPeriodicTable identifies the PeriodicTable lookup struct.
	// Used as the type argument of @atomcad:group declarations for the element table binding.
	// Source: engine/periodic/assets/periodic_table.wgsl
	AnnotationArgPeriodicTable AnnotationArg = "periodic_table"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @atomcad:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which Scene-level resource provider owns a bind group. Used in
// @atomcad:provider annotations and matched by the Scene's draw call setup logic to
// wire the correct BindGroupProvider for each group.

const (
	// AnnotationArgMolecule identifies the per-part molecule provider
	// (atom buffer, bond buffer, periodic table).
	AnnotationArgMolecule AnnotationArg = "molecule"

	// AnnotationArgBlit identifies the fullscreen blit provider
	// (offscreen color texture and its sampler).
	AnnotationArgBlit AnnotationArg = "blit"
)

// ── Blit binding role arguments ────────────────────────────────────────────────
// These qualify individual bindings within the blit provider group. They appear
// as the optional fourth argument of an @atomcad:provider annotation, telling the
// renderer which texture or sampler role each binding fulfils without relying on
// variable-name string matching.

const (
	// AnnotationArgColorTexture identifies the offscreen color texture binding.
	AnnotationArgColorTexture AnnotationArg = "color_texture"

	// AnnotationArgColorSampler identifies the sampler paired with the color texture.
	AnnotationArgColorSampler AnnotationArg = "color_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @atomcad:include and @atomcad:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgAtom,
	AnnotationArgAtomBuffer,
	AnnotationArgBond,
	AnnotationArgBondBuffer,
	AnnotationArgElement,
	AnnotationArgPeriodicTable,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @atomcad:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @atomcad:provider annotations. Each maps to a
// Scene-level resource provider used during draw call wiring.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgMolecule,
	AnnotationArgBlit,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @atomcad:provider annotations. These identify the semantic purpose
// of individual bindings within a blit provider group.
var validBindingRoles = []AnnotationArg{
	AnnotationArgColorTexture,
	AnnotationArgColorSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @atomcad: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @atomcad annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @atomcad include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @atomcad include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @atomcad group annotation requires exactly four arguments (group number, binding number, address space, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @atomcad group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @atomcad group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @atomcad group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @atomcad group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @atomcad group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @atomcad provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @atomcad provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @atomcad provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @atomcad provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @atomcad annotation type %q", lineNum, args[0])
	}
}

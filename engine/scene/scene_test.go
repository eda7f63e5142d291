package scene

import (
	"math"
	"testing"

	"github.com/shinzlet/atomcad-go/common"
	"github.com/shinzlet/atomcad-go/engine/molecule"
	"github.com/shinzlet/atomcad-go/engine/periodic"
)

func singleAtomMolecule(t *testing.T, position [3]float32) molecule.Molecule {
	t.Helper()
	mol := molecule.NewMolecule("test")
	mol.AddAtom(periodic.Carbon, position)
	return mol
}

func TestAssemblyWalkAccumulatesTranslations(t *testing.T) {
	root := NewAssembly("root")
	root.SetPosition([3]float32{10, 0, 0})

	group := NewAssembly("group")
	group.SetPosition([3]float32{0, 5, 0})
	root.AddAssembly(group)

	part := NewPart("probe", singleAtomMolecule(t, [3]float32{0, 0, 0}),
		WithPartPosition([3]float32{0, 0, 2}),
	)
	group.AddPart(part)

	visited := 0
	root.Walk(func(p Part, transform [16]float32) {
		visited++
		origin := common.TransformVec4(transform[:], [4]float32{0, 0, 0, 1})
		want := [3]float32{10, 5, 2}
		for i := range 3 {
			if diff := float64(origin[i] - want[i]); math.Abs(diff) > 1e-5 {
				t.Errorf("accumulated origin[%d] = %v, want %v", i, origin[i], want[i])
			}
		}
	})
	if visited != 1 {
		t.Fatalf("walk visited %d parts, want 1", visited)
	}
}

func TestAssemblyWalkVisitsEveryPart(t *testing.T) {
	root := NewAssembly("root")
	inner := NewAssembly("inner")
	deepest := NewAssembly("deepest")
	root.AddAssembly(inner)
	inner.AddAssembly(deepest)

	names := map[string]bool{}
	for _, tc := range []struct {
		parent Assembly
		name   string
	}{
		{root, "top"},
		{inner, "middle"},
		{deepest, "bottom"},
	} {
		tc.parent.AddPart(NewPart(tc.name, singleAtomMolecule(t, [3]float32{0, 0, 0})))
		names[tc.name] = false
	}

	root.Walk(func(p Part, _ [16]float32) {
		names[p.Name()] = true
	})

	for name, seen := range names {
		if !seen {
			t.Errorf("walk did not visit part %q", name)
		}
	}
}

func TestAssemblyScaleCompounds(t *testing.T) {
	root := NewAssembly("root")
	root.SetScale(2)

	part := NewPart("scaled", singleAtomMolecule(t, [3]float32{0, 0, 0}),
		WithPartPosition([3]float32{1, 0, 0}),
		WithPartScale(3),
	)
	root.AddPart(part)

	root.Walk(func(_ Part, transform [16]float32) {
		// The part's local translation is scaled by the parent assembly.
		origin := common.TransformVec4(transform[:], [4]float32{0, 0, 0, 1})
		if math.Abs(float64(origin[0]-2)) > 1e-5 {
			t.Errorf("scaled translation x = %v, want 2", origin[0])
		}

		// The combined uniform scale is the product of the two factors.
		col := common.Length3([3]float32{transform[0], transform[1], transform[2]})
		if math.Abs(float64(col-6)) > 1e-4 {
			t.Errorf("combined scale = %v, want 6", col)
		}
	})
}

func TestPartBoundingSphere(t *testing.T) {
	mol := molecule.NewMolecule("pair")
	mol.AddAtom(periodic.Carbon, [3]float32{-1, 0, 0})
	mol.AddAtom(periodic.Carbon, [3]float32{1, 0, 0})

	p := NewPart("pair", mol).(*partImpl)

	var transform [16]float32
	common.BuildModelMatrix(transform[:], 3, 0, 0, 0, 0, 0, 2, 2, 2)

	pad := float32(0.5)
	center, radius, ok := partBoundingSphere(p, transform, pad)
	if !ok {
		t.Fatal("expected a bounding sphere for a non-empty molecule")
	}

	// Center of the two atoms is the origin, translated to (3,0,0).
	want := [3]float32{3, 0, 0}
	for i := range 3 {
		if math.Abs(float64(center[i]-want[i])) > 1e-5 {
			t.Errorf("center[%d] = %v, want %v", i, center[i], want[i])
		}
	}

	// Position bounds radius 1, padded by 0.5, scaled by 2.
	if math.Abs(float64(radius-3)) > 1e-4 {
		t.Errorf("radius = %v, want 3", radius)
	}
}

func TestPartBoundingSphereEmptyMolecule(t *testing.T) {
	p := NewPart("empty", molecule.NewMolecule("empty")).(*partImpl)

	var identity [16]float32
	common.Identity(identity[:])
	if _, _, ok := partBoundingSphere(p, identity, 1); ok {
		t.Error("expected no bounding sphere for an empty molecule")
	}
}

func TestPartDirtyLifecycle(t *testing.T) {
	p := NewPart("probe", singleAtomMolecule(t, [3]float32{0, 0, 0})).(*partImpl)

	if !p.takeDirty() {
		t.Fatal("new parts must start dirty so their first upload happens")
	}
	if p.takeDirty() {
		t.Error("takeDirty must clear the flag")
	}

	p.MarkDirty()
	if !p.takeDirty() {
		t.Error("MarkDirty must re-arm the flag")
	}
}

func TestFrustumCullsSphereBehindCamera(t *testing.T) {
	var proj, view, vp [16]float32
	common.Perspective(proj[:], float32(math.Pi/4), 1, 0.1, 100)
	common.LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)
	common.Mul4(vp[:], proj[:], view[:])

	f := common.ExtractFrustumFromMatrix(vp[:])

	if !f.IntersectsSphere([3]float32{0, 0, 0}, 1) {
		t.Error("sphere at the look-at target must be inside the frustum")
	}
	if f.IntersectsSphere([3]float32{0, 0, 50}, 1) {
		t.Error("sphere behind the camera must be culled")
	}
	if f.IntersectsSphere([3]float32{200, 0, 0}, 1) {
		t.Error("sphere far outside the side planes must be culled")
	}
	if !f.IntersectsSphere([3]float32{200, 0, 0}, 250) {
		t.Error("a sphere large enough to reach the frustum must not be culled")
	}
}

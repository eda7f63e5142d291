package periodic

import "testing"

func TestLookupKnownElements(t *testing.T) {
	table := NewTable()

	c := table.Lookup(uint32(Carbon))
	if c.Radius != 0.85 {
		t.Errorf("carbon radius = %v, want 0.85", c.Radius)
	}
	h := table.Lookup(uint32(Hydrogen))
	if h.Color != [3]float32{1, 1, 1} {
		t.Errorf("hydrogen color = %v, want white", h.Color)
	}
}

func TestLookupMasksOutOfRangeKinds(t *testing.T) {
	table := NewTable()

	// Kinds beyond the table wrap via the 7-bit mask instead of erroring.
	for _, kind := range []uint32{128, 129, 255, 1 << 20} {
		got := table.Lookup(kind)
		want := table.Lookup(kind & KindMask)
		if got != want {
			t.Errorf("Lookup(%d) = %v, want masked entry %v", kind, got, want)
		}
	}

	if table.Lookup(128+uint32(Oxygen)) != table.Lookup(uint32(Oxygen)) {
		t.Error("kind 128+O should alias oxygen")
	}
}

func TestUnassignedSlotsUseDefault(t *testing.T) {
	table := NewTable()
	got := table.Lookup(127)
	if got != defaultVisual {
		t.Errorf("slot 127 = %v, want default %v", got, defaultVisual)
	}
}

func TestMarshalLayout(t *testing.T) {
	table := NewTable()
	buf := table.Marshal()

	if len(buf) != TableSize*16 {
		t.Fatalf("marshalled size = %d, want %d", len(buf), TableSize*16)
	}

	var g GPUElementVisual
	if g.Size() != 16 {
		t.Errorf("GPUElementVisual size = %d, want 16", g.Size())
	}

	// Hydrogen sits at slot 1: color (1,1,1) means 0x3F800000 at each of the
	// first three words, radius 0.6 in the fourth.
	off := 1 * 16
	for c := range 3 {
		word := uint32(buf[off+c*4]) | uint32(buf[off+c*4+1])<<8 | uint32(buf[off+c*4+2])<<16 | uint32(buf[off+c*4+3])<<24
		if word != 0x3F800000 {
			t.Errorf("hydrogen color component %d = %#x, want 0x3F800000", c, word)
		}
	}
}

func TestSetOverridesEntry(t *testing.T) {
	table := NewTable()
	custom := ElementVisual{Color: [3]float32{1, 0, 1}, Radius: 2.5}
	table.Set(Carbon, custom)
	if table.Lookup(uint32(Carbon)) != custom {
		t.Error("Set did not override the carbon entry")
	}
}

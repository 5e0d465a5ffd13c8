package region

import "testing"

func TestNewMapDropsZeroSized(t *testing.T) {
	m := NewMap([]Region{
		{Start: 0x1000, Size: 0x100, Readable: true},
		{Start: 0x2000, Size: 0, Readable: true},
		{Start: 0x3000, Size: 0x200, Readable: false, Writable: true},
	})
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestMapTotalBytes(t *testing.T) {
	m := NewMap([]Region{
		{Start: 0x1000, Size: 0x100, Readable: true},
		{Start: 0x3000, Size: 0x200, Readable: true},
	})
	if got := m.TotalBytes(); got != 0x300 {
		t.Errorf("TotalBytes() = 0x%x, want 0x300", got)
	}
}

func TestScannableFiltersOnReadableOnly(t *testing.T) {
	m := NewMap([]Region{
		{Start: 0x1000, Size: 0x100, Readable: true, Writable: false, Executable: false},
		{Start: 0x2000, Size: 0x100, Readable: false, Writable: true, Executable: true},
		{Start: 0x3000, Size: 0x100, Readable: true, Writable: true, Executable: false},
	})

	scannable := m.Scannable()
	if len(scannable) != 2 {
		t.Fatalf("Scannable() returned %d regions, want 2", len(scannable))
	}
	for _, r := range scannable {
		if !r.Readable {
			t.Errorf("non-readable region %v leaked into Scannable()", r)
		}
	}
}

func TestRegionEnd(t *testing.T) {
	r := Region{Start: 0x1000, Size: 0x500}
	if got := r.End(); got != 0x1500 {
		t.Errorf("End() = 0x%x, want 0x1500", got)
	}
}

func TestClipTruncatesAndDropsRegions(t *testing.T) {
	regions := []Region{
		{Start: 0x1000, Size: 0x1000, Readable: true},  // wholly inside
		{Start: 0x500, Size: 0x700, Readable: true},    // straddles min, truncated from the left
		{Start: 0x1e00, Size: 0x400, Readable: true},   // straddles max, truncated from the right
		{Start: 0x3000, Size: 0x1000, Readable: true},  // wholly outside, dropped
	}
	clipped := Clip(regions, 0x800, 0x2000)
	if len(clipped) != 3 {
		t.Fatalf("Clip() returned %d regions, want 3: %+v", len(clipped), clipped)
	}
	if clipped[1].Start != 0x800 || clipped[1].End() != 0xc00 {
		t.Errorf("left-straddling region clipped to [0x%x, 0x%x), want [0x800, 0xc00)", clipped[1].Start, clipped[1].End())
	}
	if clipped[2].Start != 0x1e00 || clipped[2].End() != 0x2000 {
		t.Errorf("right-straddling region clipped to [0x%x, 0x%x), want [0x1e00, 0x2000)", clipped[2].Start, clipped[2].End())
	}
}

func TestClipUnboundedWhenZero(t *testing.T) {
	regions := []Region{{Start: 0x1000, Size: 0x100, Readable: true}}
	if got := Clip(regions, 0, 0); len(got) != 1 || got[0] != regions[0] {
		t.Errorf("Clip(regions, 0, 0) = %+v, want regions unchanged", got)
	}
}

func TestRegionLabel(t *testing.T) {
	tests := []struct {
		r    Region
		want string
	}{
		{Region{}, "---"},
		{Region{Readable: true}, "r--"},
		{Region{Readable: true, Writable: true}, "rw-"},
		{Region{Readable: true, Writable: true, Executable: true}, "rwx"},
		{Region{Executable: true}, "--x"},
	}
	for _, tt := range tests {
		if got := tt.r.Label(); got != tt.want {
			t.Errorf("Label() for %+v = %q, want %q", tt.r, got, tt.want)
		}
	}
}

// Package region models the ordered snapshot of a target process's virtual
// memory regions, as produced by the OS memory port and consumed by the
// scan engine.
package region

import "fmt"

// Region is a maximal contiguous run of target virtual addresses with
// uniform permissions. Immutable after construction.
type Region struct {
	Start      uint64
	Size       uint64
	Readable   bool
	Writable   bool
	Executable bool
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Start + r.Size
}

// Label derives a short permission label for display, falling back to a
// reserved/no-access marker when nothing is set.
func (r Region) Label() string {
	if !r.Readable && !r.Writable && !r.Executable {
		return "---"
	}
	label := []byte("---")
	if r.Readable {
		label[0] = 'r'
	}
	if r.Writable {
		label[1] = 'w'
	}
	if r.Executable {
		label[2] = 'x'
	}
	return string(label)
}

func (r Region) String() string {
	return fmt.Sprintf("0x%x-0x%x %s (%d bytes)", r.Start, r.End(), r.Label(), r.Size)
}

// Map is an ordered snapshot of a target's regions captured at one instant.
// It is advisory: regions may be unmapped or have permissions lowered
// between capture and use.
type Map struct {
	regions []Region
}

// NewMap builds a Map from an ordered slice of regions, dropping zero-sized
// entries.
func NewMap(regions []Region) Map {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Size == 0 {
			continue
		}
		out = append(out, r)
	}
	return Map{regions: out}
}

// Regions returns the ordered region slice. Callers must not mutate it.
func (m Map) Regions() []Region {
	return m.regions
}

// Len returns the number of regions in the map.
func (m Map) Len() int {
	return len(m.regions)
}

// TotalBytes sums the size of every region in the map.
func (m Map) TotalBytes() uint64 {
	var total uint64
	for _, r := range m.regions {
		total += r.Size
	}
	return total
}

// Scannable returns the subset of regions that are scan candidates: a
// region is a scan candidate iff its Readable flag is set. Writable and
// Executable are retained for display but do not affect scanning policy.
func (m Map) Scannable() []Region {
	out := make([]Region, 0, len(m.regions))
	for _, r := range m.regions {
		if r.Readable {
			out = append(out, r)
		}
	}
	return out
}

// Clip intersects every region in regions with [min, max), dropping regions
// that fall entirely outside the bound and truncating ones that straddle
// it. A max of 0 means unbounded (matches config.Config's "0 = default"
// convention).
func Clip(regions []Region, min, max uint64) []Region {
	if min == 0 && max == 0 {
		return regions
	}
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		start, end := r.Start, r.End()
		if start < min {
			start = min
		}
		if max != 0 && end > max {
			end = max
		}
		if start >= end {
			continue
		}
		r.Start = start
		r.Size = end - start
		out = append(out, r)
	}
	return out
}

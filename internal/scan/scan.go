// Package scan implements the scan engine: the data model for scan
// candidates and the first-scan and next-scan algorithms, including the
// changed/unchanged filters that require retained per-address history.
package scan

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/machscan/machscan/internal/region"
	"github.com/machscan/machscan/internal/scanerr"
	"github.com/machscan/machscan/internal/valuetype"
)

// MaxResults is the hard cap on the result set after a first-scan,
// preventing runaway memory consumption on broad queries like
// "scan byte 0".
const MaxResults = 10_000

// chunkSize and chunkOverlap implement the Design Notes' optional chunked
// region read strategy: a region may exceed typical page cache sizes, so
// large regions are read in fixed-size windows with width-1 bytes of
// overlap to keep stride-1 matching correct across window boundaries.
// 4 MiB mirrors the MinChunkSize constant used by the corpus's own
// macOS memory-reading tooling (chatlog's glance package).
const chunkSize = 4 * 1024 * 1024

// progressInterval is how many regions pass between coarse progress logs.
const progressInterval = 50

// MemoryPort is the subset of internal/port.Port the scan engine needs.
// A narrow interface keeps the engine testable without a real target.
type MemoryPort interface {
	Read(addr uint64, length int) ([]byte, error)
	ReadInto(addr uint64, buf []byte) (int, error)
}

// Candidate is an address plus the last byte pattern observed there under
// a given type; a member of the scan result set.
type Candidate struct {
	Address  uint64
	Type     valuetype.Type
	Bytes    []byte
	Rendered string
}

// Engine holds the current result set and its predecessor. previous is
// used only to supply prior observed bytes for changed/unchanged filters
// and is overwritten at the start of every next-scan.
type Engine struct {
	mu       sync.Mutex
	current  []Candidate
	previous []Candidate
}

// New creates an empty scan engine.
func New() *Engine {
	return &Engine{}
}

// ResultCount returns the number of candidates in the current result set.
func (e *Engine) ResultCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.current)
}

// FirstScan clears current and previous, then scans every readable region
// in rm for byte patterns matching op against pattern, appending matches
// to current in ascending address order. It stops early once the 10,000
// candidate cap is reached, returning truncated=true.
func (e *Engine) FirstScan(mp MemoryPort, rm region.Map, t valuetype.Type, pattern []byte, op valuetype.Op) (count int, truncated bool, err error) {
	if op != valuetype.Eq && op != valuetype.Gt && op != valuetype.Lt {
		return 0, false, fmt.Errorf("%w: first-scan requires exact/greater/less, got %v", scanerr.ErrUnknownOp, op)
	}
	width := len(pattern)
	if width == 0 {
		return 0, false, fmt.Errorf("%w: empty search pattern", scanerr.ErrMalformedLiteral)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = nil
	e.previous = nil

	var current []Candidate
	truncated = false

	scannable := rm.Scannable()
	for i, r := range scannable {
		if i%progressInterval == 0 {
			log.Debug().Int("region", i).Int("of", len(scannable)).Msg("first-scan progress")
		}
		if uint64(width) > r.Size {
			continue
		}

		stopped, rerr := scanRegion(mp, r, t, pattern, op, width, &current)
		if rerr != nil {
			log.Warn().Err(rerr).Uint64("addr", r.Start).Msg("skipping unreadable region")
			continue
		}
		if stopped {
			truncated = true
			break
		}
	}

	if truncated {
		log.Warn().Int("cap", MaxResults).Msg("result set truncated at capacity")
	}

	e.current = current
	return len(current), truncated, nil
}

// scanRegion reads r (chunked for large regions) and appends matches to
// current. It returns stopped=true if the MaxResults cap was hit mid-scan.
func scanRegion(mp MemoryPort, r region.Region, t valuetype.Type, pattern []byte, op valuetype.Op, width int, current *[]Candidate) (bool, error) {
	if r.Size <= chunkSize {
		buf, err := mp.Read(r.Start, int(r.Size))
		if err != nil {
			return false, err
		}
		return scanBuffer(buf, r.Start, t, pattern, op, width, current), nil
	}

	overlap := uint64(width - 1)
	buf := make([]byte, chunkSize)
	pos := r.Start
	end := r.End()

	for pos < end {
		readLen := chunkSize
		if remaining := end - pos; remaining < uint64(readLen) {
			readLen = int(remaining)
		}

		n, err := mp.ReadInto(pos, buf[:readLen])
		if err != nil {
			return false, err
		}

		if scanBuffer(buf[:n], pos, t, pattern, op, width, current) {
			return true, nil
		}

		if pos+uint64(readLen) >= end {
			break
		}
		pos += uint64(readLen) - overlap
	}

	return false, nil
}

func scanBuffer(buf []byte, base uint64, t valuetype.Type, pattern []byte, op valuetype.Op, width int, current *[]Candidate) bool {
	for i := 0; i+width <= len(buf); i++ {
		window := buf[i : i+width]
		match, err := valuetype.Compare(t, window, pattern, op)
		if err != nil || !match {
			continue
		}

		b := append([]byte(nil), window...)
		*current = append(*current, Candidate{
			Address:  base + uint64(i),
			Type:     t,
			Bytes:    b,
			Rendered: valuetype.Render(t, b),
		})

		if len(*current) >= MaxResults {
			return true
		}
	}
	return false
}

// NextScan refines the current result set by re-reading each candidate's
// address. Every candidate in current must have type t; a mismatch fails
// with ErrTypeMismatch. current is moved into previous before refinement,
// so Changed/Unchanged compare freshly read bytes against the previously
// stored bytes of that candidate; candidates that fail to read are
// dropped rather than retained with stale bytes.
func (e *Engine) NextScan(mp MemoryPort, t valuetype.Type, pattern []byte, op valuetype.Op) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.current) == 0 {
		return 0, scanerr.ErrNoPriorResults
	}
	for _, c := range e.current {
		if c.Type != t {
			return 0, fmt.Errorf("%w: result set holds %v, next-scan requested %v", scanerr.ErrTypeMismatch, c.Type, t)
		}
	}

	e.previous = e.current
	e.current = nil

	for _, k := range e.previous {
		fresh, err := mp.Read(k.Address, len(k.Bytes))
		if err != nil {
			log.Debug().Err(err).Uint64("addr", k.Address).Msg("dropping candidate, read failed")
			continue
		}

		var match bool
		switch op {
		case valuetype.Changed, valuetype.Unchanged:
			match, err = valuetype.Compare(t, fresh, k.Bytes, op)
		case valuetype.Eq, valuetype.Gt, valuetype.Lt:
			match, err = valuetype.Compare(t, fresh, pattern, op)
		default:
			return 0, fmt.Errorf("%w: %v", scanerr.ErrUnknownOp, op)
		}
		if err != nil {
			return 0, err
		}

		if match {
			e.current = append(e.current, Candidate{
				Address:  k.Address,
				Type:     t,
				Bytes:    fresh,
				Rendered: valuetype.Render(t, fresh),
			})
		}
	}

	return len(e.current), nil
}

// Snapshot is a read-only view over current, bounded by limit (0 means
// unbounded). Total is always the full count regardless of limit.
type Snapshot struct {
	Candidates []Candidate
	Total      int
}

// Snapshot returns a bounded, cloned view of current. Callers never
// receive an aliased mutable reference into engine state.
func (e *Engine) Snapshot(limit int) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := len(e.current)
	n := total
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Candidate, n)
	copy(out, e.current[:n])
	return Snapshot{Candidates: out, Total: total}
}

// ReplaceCurrent overwrites current with candidates loaded from a saved
// result file, clearing previous since no observed-bytes history exists
// for the loaded set.
func (e *Engine) ReplaceCurrent(candidates []Candidate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = append([]Candidate(nil), candidates...)
	e.previous = nil
}

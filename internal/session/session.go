// Package session is the session façade: it owns the memory port, the
// region map, and the scan engine, and enforces the attached/detached
// lifecycle around every operation that requires a target.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/machscan/machscan/internal/addrop"
	"github.com/machscan/machscan/internal/config"
	"github.com/machscan/machscan/internal/port"
	"github.com/machscan/machscan/internal/region"
	"github.com/machscan/machscan/internal/scan"
	"github.com/machscan/machscan/internal/scanerr"
	"github.com/machscan/machscan/internal/valuetype"
)

// Info reports the attached target's summary: pid, name, region count,
// result count, and total mapped bytes.
type Info struct {
	Pid              int
	Name             string
	RegionCount      int
	ResultCount      int
	TotalMappedBytes uint64
}

// Session is the Detached/Attached session state machine. At most one
// target is attached at a time.
type Session struct {
	mu       sync.Mutex
	attached bool
	pid      int
	name     string
	port     *port.Port
	regions  region.Map
	engine   *scan.Engine
	minAddr  uint64
	maxAddr  uint64
}

// New creates a detached session bound to cfg's scan address range. Every
// region refresh clips the target's region map to [cfg.MinAddress,
// cfg.MaxAddress) before it becomes visible to the scan engine.
func New(cfg config.Config) *Session {
	return &Session{
		engine:  scan.New(),
		minAddr: cfg.MinAddress,
		maxAddr: cfg.MaxAddress,
	}
}

// Attach transitions Detached->Attached, acquiring a port and refreshing
// the region map. A permission failure on attach leaves the session
// Detached.
func (s *Session) Attach(pid int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return scanerr.ErrAlreadyAttached
	}

	p, err := port.Open(pid)
	if err != nil {
		return err
	}

	s.port = p
	s.pid = pid
	s.name = name
	s.attached = true
	s.engine = scan.New()

	if err := s.refreshLocked(); err != nil {
		// Region enumeration is best-effort (§4.2): a failure here does
		// not unwind the attach, it just leaves the map empty until the
		// next explicit refresh.
		log.Warn().Err(err).Int("pid", pid).Msg("initial region refresh failed")
	}

	return nil
}

// Detach releases the port and clears all scan state. Safe to call on
// every process-exit path since Close is idempotent.
func (s *Session) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return scanerr.ErrNotAttached
	}

	err := s.port.Close()
	s.port = nil
	s.attached = false
	s.pid = 0
	s.name = ""
	s.regions = region.Map{}
	s.engine = scan.New()
	return err
}

// Attached reports whether a target is currently attached.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Refresh re-captures the region map. First-scan should refresh before
// running since region snapshots age.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return scanerr.ErrNotAttached
	}
	return s.refreshLocked()
}

func (s *Session) refreshLocked() error {
	regions, err := s.port.Regions()
	if err != nil {
		return fmt.Errorf("refreshing region map: %w", err)
	}
	regions = region.Clip(regions, s.minAddr, s.maxAddr)
	s.regions = region.NewMap(regions)
	return nil
}

// Info reports the attached target's summary.
func (s *Session) Info() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return Info{}, scanerr.ErrNotAttached
	}
	return Info{
		Pid:              s.pid,
		Name:             s.name,
		RegionCount:      s.regions.Len(),
		ResultCount:      s.engine.ResultCount(),
		TotalMappedBytes: s.regions.TotalBytes(),
	}, nil
}

// Regions returns the current region map snapshot.
func (s *Session) Regions() (region.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return region.Map{}, scanerr.ErrNotAttached
	}
	return s.regions, nil
}

// snapshot captures the port/regions/engine pointers under lock for use
// outside the lock during a potentially long-running operation. The
// session has exactly one actor (§5), so this is safe: nothing else can
// mutate these fields concurrently.
func (s *Session) snapshot() (*port.Port, region.Map, *scan.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil, region.Map{}, nil, scanerr.ErrNotAttached
	}
	return s.port, s.regions, s.engine, nil
}

// FirstScan refreshes the region map, then runs a first-scan for t/pattern/op.
func (s *Session) FirstScan(t valuetype.Type, pattern []byte, op valuetype.Op) (count int, truncated bool, err error) {
	p, _, engine, err := s.snapshot()
	if err != nil {
		return 0, false, err
	}
	if err := s.Refresh(); err != nil {
		return 0, false, err
	}
	_, regions, _, err := s.snapshot()
	if err != nil {
		return 0, false, err
	}
	return engine.FirstScan(p, regions, t, pattern, op)
}

// NextScan refines the current result set.
func (s *Session) NextScan(t valuetype.Type, pattern []byte, op valuetype.Op) (int, error) {
	p, _, engine, err := s.snapshot()
	if err != nil {
		return 0, err
	}
	return engine.NextScan(p, t, pattern, op)
}

// Snapshot returns a bounded view of the current result set.
func (s *Session) Snapshot(limit int) (scan.Snapshot, error) {
	_, _, engine, err := s.snapshot()
	if err != nil {
		return scan.Snapshot{}, err
	}
	return engine.Snapshot(limit), nil
}

// Load replaces the current result set, e.g. from a saved file.
func (s *Session) Load(candidates []scan.Candidate) error {
	_, _, engine, err := s.snapshot()
	if err != nil {
		return err
	}
	engine.ReplaceCurrent(candidates)
	return nil
}

// Read performs an address read.
func (s *Session) Read(addr uint64, t valuetype.Type, width int) (string, []byte, error) {
	p, _, _, err := s.snapshot()
	if err != nil {
		return "", nil, err
	}
	return addrop.Read(p, addr, t, width)
}

// Write performs an address write.
func (s *Session) Write(addr uint64, t valuetype.Type, value string) error {
	p, _, _, err := s.snapshot()
	if err != nil {
		return err
	}
	return addrop.Write(p, addr, t, value)
}

// Watch performs an address watch loop until ctx is cancelled or a
// persistent read failure occurs.
func (s *Session) Watch(ctx context.Context, addr uint64, t valuetype.Type, width int, interval time.Duration, onChange addrop.OnChange) error {
	p, _, _, err := s.snapshot()
	if err != nil {
		return err
	}
	return addrop.Watch(ctx, p, addr, t, width, interval, onChange)
}

// Package addrop implements the single-address read, write, and
// watch-for-change primitives behind the session's read, write, and watch
// commands. The scan engine's next-scan does its per-address reads through
// its own port interface, not through this package.
package addrop

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/machscan/machscan/internal/scanerr"
	"github.com/machscan/machscan/internal/valuetype"
)

// MemoryPort is the subset of internal/port.Port address operations need.
type MemoryPort interface {
	Read(addr uint64, length int) ([]byte, error)
	Write(addr uint64, data []byte) error
}

// maxConsecutiveFailures bounds how many back-to-back read failures Watch
// tolerates before treating the target as gone.
const maxConsecutiveFailures = 5

// Read reads width bytes at addr and renders them under t. width is the
// type's fixed width for numeric types, or the caller-chosen window for
// String.
func Read(mp MemoryPort, addr uint64, t valuetype.Type, width int) (rendered string, raw []byte, err error) {
	b, err := mp.Read(addr, width)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", scanerr.ErrUnreadable, err)
	}
	return valuetype.Render(t, b), b, nil
}

// Write parses value under t and writes the resulting bytes to addr. The
// write length always equals the type's width; String writes do not
// append a NUL terminator.
func Write(mp MemoryPort, addr uint64, t valuetype.Type, value string) error {
	b, err := valuetype.Parse(t, value)
	if err != nil {
		return err
	}
	if err := mp.Write(addr, b); err != nil {
		return fmt.Errorf("%w: %v", scanerr.ErrUnwritable, err)
	}
	return nil
}

// OnChange is called by Watch whenever the observed bytes differ from the
// last printed value.
type OnChange func(oldRendered, newRendered string)

// Watch reads an initial baseline at addr, then on each tick re-reads
// width bytes. When the freshly read bytes differ from the last printed
// value, onChange is invoked and the baseline updates. Watch returns nil
// when ctx is cancelled (user interrupt) and an error after
// maxConsecutiveFailures consecutive read failures (persistent failure).
func Watch(ctx context.Context, mp MemoryPort, addr uint64, t valuetype.Type, width int, interval time.Duration, onChange OnChange) error {
	last, err := mp.Read(addr, width)
	if err != nil {
		return fmt.Errorf("%w: %v", scanerr.ErrUnreadable, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fresh, err := mp.Read(addr, width)
			if err != nil {
				failures++
				log.Warn().Err(err).Uint64("addr", addr).Int("failures", failures).Msg("watch read failed")
				if failures >= maxConsecutiveFailures {
					return fmt.Errorf("%w: persistent read failure while watching 0x%x", scanerr.ErrUnreadable, addr)
				}
				continue
			}
			failures = 0

			changed, err := valuetype.Compare(t, fresh, last, valuetype.Changed)
			if err != nil {
				return err
			}
			if changed {
				onChange(valuetype.Render(t, last), valuetype.Render(t, fresh))
				last = fresh
			}
		}
	}
}

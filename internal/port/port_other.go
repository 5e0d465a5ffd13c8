//go:build !darwin

package port

import (
	"fmt"

	"github.com/machscan/machscan/internal/region"
)

// Port is a non-darwin stub. machscan's memory access strategy is
// lldb-subprocess driven and only meaningful on macOS (spec §1: "a
// foreign process on a macOS host"); this build keeps the module
// compilable and testable on other platforms without claiming to support
// them.
type Port struct{}

var errUnsupportedPlatform = fmt.Errorf("machscan: process memory access is only supported on darwin")

func Open(pid int) (*Port, error) {
	return nil, errUnsupportedPlatform
}

func (p *Port) Close() error { return nil }

func (p *Port) Regions() ([]region.Region, error) {
	return nil, errUnsupportedPlatform
}

func (p *Port) Read(addr uint64, length int) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func (p *Port) ReadInto(addr uint64, buf []byte) (int, error) {
	return 0, errUnsupportedPlatform
}

func (p *Port) Write(addr uint64, data []byte) error {
	return errUnsupportedPlatform
}

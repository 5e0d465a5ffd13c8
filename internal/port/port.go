// Package port is the sole boundary against the host's process-memory
// facility: it owns the opaque handle to a target process's address
// space, enumerates regions, and performs fixed-size reads and writes
// against absolute addresses.
//
// macOS has no cgo-free binding for task_for_pid/mach_vm_read/
// mach_vm_write/mach_vm_region_recurse, so the darwin implementation
// drives a persistent lldb subprocess instead, following the same
// technique used by real cgo-free macOS memory-inspection tooling. See
// SPEC_FULL.md's "macOS memory access strategy" section.
package port

import "time"

// attachTimeout bounds how long Open waits for lldb to report a
// successful attach before giving up.
const attachTimeout = 10 * time.Second

// commandTimeout bounds how long a single lldb command is given to
// complete before the port treats it as a failure. Every command,
// including bulk reads of large regions, uses this same bound; callers
// cannot override it per call.
const commandTimeout = 30 * time.Second

// upperUserAddress bounds the default region walk to macOS's userspace
// address ceiling, matching the scan bound the teacher used for its
// Windows region walk (0x7FFFFFFFFFFF).
const upperUserAddress = 0x00007FFFFFFFFFFF

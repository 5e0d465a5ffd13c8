// Package shell is the interactive command dispatcher that sits in front
// of the session façade. The spec (§1) treats the shell itself — prompt
// formatting, help text, coloring — as an external collaborator outside
// the core; this package is that collaborator's minimal, real
// implementation so the module is runnable end to end.
package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/machscan/machscan/internal/config"
	"github.com/machscan/machscan/internal/osproc"
	"github.com/machscan/machscan/internal/resultfile"
	"github.com/machscan/machscan/internal/scanerr"
	"github.com/machscan/machscan/internal/session"
	"github.com/machscan/machscan/internal/valuetype"
)

// defaultStringWindow is the byte window used for read/watch of a String
// address when the caller doesn't otherwise imply a width (spec leaves
// String width for single-address ops unspecified beyond "a fixed watch
// window").
const defaultStringWindow = 64

// Shell dispatches tokenized command lines to session operations.
type Shell struct {
	sess *session.Session
	cfg  config.Config
	out  io.Writer
}

// New creates a Shell bound to sess, using cfg for command defaults.
func New(sess *session.Session, cfg config.Config, out io.Writer) *Shell {
	return &Shell{sess: sess, cfg: cfg, out: out}
}

// Dispatch parses and executes one command line. It returns exit=true
// for "exit"/"quit".
func (sh *Shell) Dispatch(ctx context.Context, line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help", "?":
		sh.help()
	case "ps":
		sh.cmdPs()
	case "attach":
		sh.cmdAttach(args)
	case "detach":
		sh.cmdDetach()
	case "info":
		sh.cmdInfo()
	case "regions":
		sh.cmdRegions()
	case "scan":
		sh.cmdScan(args)
	case "next":
		sh.cmdNext(args)
	case "results":
		sh.cmdResults(args)
	case "read":
		sh.cmdRead(args)
	case "write":
		sh.cmdWrite(args)
	case "watch":
		sh.cmdWatch(ctx, args)
	case "save":
		sh.cmdSave(args)
	case "load":
		sh.cmdLoad(args)
	default:
		fmt.Fprintf(sh.out, "unknown command: %s (type 'help')\n", cmd)
	}
	return false
}

func (sh *Shell) errf(format string, args ...any) {
	fmt.Fprintf(sh.out, "error: "+format+"\n", args...)
}

func (sh *Shell) help() {
	fmt.Fprintln(sh.out, `Commands:
  ps                              list live processes
  attach <pid>                    attach to a target process
  detach                          detach from the current target
  info                            summarize the attached target
  regions                         dump the region map
  scan <type> <value> [--op op]   first-scan (op: exact|greater|less, default exact)
  next <type> [value] [--op op]   next-scan (op additionally: changed|unchanged)
  results [limit]                 show the current result set (default 20)
  read <addr> <type>              read one address
  write <addr> <type> <value>     write one address
  watch <addr> <type> [interval]  watch one address for changes (ms, default 1000)
  save <file>                     persist the current result set
  load <file>                     replace the current result set from a file
  help                            show this text
  exit | quit                     leave the shell`)
}

func (sh *Shell) cmdPs() {
	procs, err := osproc.List()
	if err != nil {
		sh.errf("%v", err)
		return
	}
	for _, p := range procs {
		fmt.Fprintf(sh.out, "%6d  %s\n", p.Pid, p.Name)
	}
}

func (sh *Shell) cmdAttach(args []string) {
	if len(args) < 1 {
		sh.errf("%v: usage: attach <pid>", scanerr.ErrMissingArgument)
		return
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		sh.errf("%v: %q", scanerr.ErrMalformedLiteral, args[0])
		return
	}

	name := "unknown"
	if procs, err := osproc.List(); err == nil {
		for _, p := range procs {
			if p.Pid == pid {
				name = p.Name
				break
			}
		}
	}

	if err := sh.sess.Attach(pid, name); err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "attached to pid %d (%s)\n", pid, name)
}

func (sh *Shell) cmdDetach() {
	if err := sh.sess.Detach(); err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintln(sh.out, "detached")
}

func (sh *Shell) cmdInfo() {
	info, err := sh.sess.Info()
	if err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "pid=%d name=%s regions=%d results=%d mapped=%d bytes\n",
		info.Pid, info.Name, info.RegionCount, info.ResultCount, info.TotalMappedBytes)
}

func (sh *Shell) cmdRegions() {
	rm, err := sh.sess.Regions()
	if err != nil {
		sh.errf("%v", err)
		return
	}
	for _, r := range rm.Regions() {
		fmt.Fprintln(sh.out, r.String())
	}
}

// opFlagSet builds a pflag.FlagSet exposing the shared "--op" flag used by
// scan and next, with its own usage output suppressed (the shell prints its
// own error lines instead of pflag's default ones).
func opFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	op := fs.String("op", "exact", "comparison op: exact|greater|less|changed|unchanged")
	return fs, op
}

func (sh *Shell) cmdScan(args []string) {
	fs, opToken := opFlagSet("scan")
	if err := fs.Parse(args); err != nil {
		sh.errf("%v: usage: scan <type> <value> [--op op]", scanerr.ErrMissingArgument)
		return
	}
	pos := fs.Args()
	if len(pos) < 2 {
		sh.errf("%v: usage: scan <type> <value> [--op op]", scanerr.ErrMissingArgument)
		return
	}

	t, err := valuetype.ParseType(pos[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}

	op, err := valuetype.ParseOp(*opToken)
	if err != nil {
		sh.errf("%v", err)
		return
	}

	pattern, err := valuetype.Parse(t, pos[1])
	if err != nil {
		sh.errf("%v", err)
		return
	}

	count, truncated, err := sh.sess.FirstScan(t, pattern, op)
	if err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "%d match(es)\n", count)
	if truncated {
		fmt.Fprintf(sh.out, "%v\n", scanerr.ErrResultSetTruncated)
	}
}

// cmdNext parses "next <type> [value] [--op op]". Changed/Unchanged ignore
// the value entirely, so it's optional for those ops; every other op
// requires it.
func (sh *Shell) cmdNext(args []string) {
	fs, opToken := opFlagSet("next")
	if err := fs.Parse(args); err != nil {
		sh.errf("%v: usage: next <type> [value] [--op op]", scanerr.ErrMissingArgument)
		return
	}
	pos := fs.Args()
	if len(pos) < 1 {
		sh.errf("%v: usage: next <type> [value] [--op op]", scanerr.ErrMissingArgument)
		return
	}

	t, err := valuetype.ParseType(pos[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}

	op, err := valuetype.ParseOp(*opToken)
	if err != nil {
		sh.errf("%v", err)
		return
	}

	valueStr := "0"
	if len(pos) >= 2 {
		valueStr = pos[1]
	} else if op != valuetype.Changed && op != valuetype.Unchanged {
		sh.errf("%v: usage: next <type> <value> [--op op]", scanerr.ErrMissingArgument)
		return
	}

	pattern, err := valuetype.Parse(t, valueStr)
	if err != nil {
		sh.errf("%v", err)
		return
	}

	count, err := sh.sess.NextScan(t, pattern, op)
	if err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "%d match(es)\n", count)
}

func (sh *Shell) cmdResults(args []string) {
	limit := sh.cfg.ResultsLimit
	if len(args) >= 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}

	snap, err := sh.sess.Snapshot(limit)
	if err != nil {
		sh.errf("%v", err)
		return
	}
	for _, c := range snap.Candidates {
		fmt.Fprintf(sh.out, "0x%x  %-6s  %s\n", c.Address, c.Type, c.Rendered)
	}
	fmt.Fprintf(sh.out, "showing %d of %d\n", len(snap.Candidates), snap.Total)
}

func (sh *Shell) cmdRead(args []string) {
	if len(args) < 2 {
		sh.errf("%v: usage: read <addr> <type>", scanerr.ErrMissingArgument)
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}
	t, err := valuetype.ParseType(args[1])
	if err != nil {
		sh.errf("%v", err)
		return
	}

	width := valuetype.Width(t)
	if width == 0 {
		width = defaultStringWindow
	}

	rendered, _, err := sh.sess.Read(addr, t, width)
	if err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintln(sh.out, rendered)
}

func (sh *Shell) cmdWrite(args []string) {
	if len(args) < 3 {
		sh.errf("%v: usage: write <addr> <type> <value>", scanerr.ErrMissingArgument)
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}
	t, err := valuetype.ParseType(args[1])
	if err != nil {
		sh.errf("%v", err)
		return
	}
	value := strings.Join(args[2:], " ")

	if err := sh.sess.Write(addr, t, value); err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintln(sh.out, "ok")
}

func (sh *Shell) cmdWatch(ctx context.Context, args []string) {
	if len(args) < 2 {
		sh.errf("%v: usage: watch <addr> <type> [interval_ms]", scanerr.ErrMissingArgument)
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}
	t, err := valuetype.ParseType(args[1])
	if err != nil {
		sh.errf("%v", err)
		return
	}

	intervalMS := sh.cfg.WatchIntervalMS
	if len(args) >= 3 {
		if n, err := strconv.Atoi(args[2]); err == nil {
			intervalMS = n
		}
	}

	width := valuetype.Width(t)
	if width == 0 {
		width = defaultStringWindow
	}

	fmt.Fprintln(sh.out, "watching... press Ctrl+C to stop")
	err = sh.sess.Watch(ctx, addr, t, width, time.Duration(intervalMS)*time.Millisecond,
		func(oldRendered, newRendered string) {
			fmt.Fprintf(sh.out, "%s -> %s\n", oldRendered, newRendered)
		})
	if err != nil {
		sh.errf("%v", err)
	}
}

func (sh *Shell) cmdSave(args []string) {
	if len(args) < 1 {
		sh.errf("%v: usage: save <file>", scanerr.ErrMissingArgument)
		return
	}
	snap, err := sh.sess.Snapshot(0)
	if err != nil {
		sh.errf("%v", err)
		return
	}
	if err := resultfile.Save(args[0], snap.Candidates); err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "saved %d result(s) to %s\n", snap.Total, args[0])
}

func (sh *Shell) cmdLoad(args []string) {
	if len(args) < 1 {
		sh.errf("%v: usage: load <file>", scanerr.ErrMissingArgument)
		return
	}
	candidates, err := resultfile.Load(args[0])
	if err != nil {
		sh.errf("%v", err)
		return
	}
	if err := sh.sess.Load(candidates); err != nil {
		sh.errf("%v", err)
		return
	}
	fmt.Fprintf(sh.out, "loaded %d result(s) from %s\n", len(candidates), args[0])
}

func parseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", scanerr.ErrMalformedLiteral, s)
	}
	return v, nil
}

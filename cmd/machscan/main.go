// Command machscan is an interactive memory inspector and editor for a
// foreign process on a macOS host.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/machscan/machscan/internal/config"
	"github.com/machscan/machscan/internal/session"
	"github.com/machscan/machscan/internal/shell"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("machscan", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "attach to this pid on startup")
	configPath := fs.String("config", defaultConfigPath(), "path to JSONC config file")
	logLevel := fs.String("log-level", "", "override the configured log level")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: config:", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	setupLogging(cfg.LogLevel)

	sess := session.New(cfg)
	sh := shell.New(sess, cfg, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *pid != 0 {
		sh.Dispatch(ctx, fmt.Sprintf("attach %d", *pid))
	}

	runREPL(ctx, sh, out)

	if sess.Attached() {
		_ = sess.Detach()
	}
	return 0
}

func setupLogging(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".machscan.jsonc"
	}
	return filepath.Join(home, ".machscan.jsonc")
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".machscan_history")
}

// runREPL drives the interactive prompt loop: readline-style input with
// history, tokenized dispatch to the shell, exit on "exit"/"quit" or
// EOF/Ctrl-D.
func runREPL(ctx context.Context, sh *shell.Shell, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, "machscan - interactive memory inspector")
	fmt.Fprintln(out, "Type 'help' for available commands.")
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("machscan> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(out, "bye")
				break
			}
			fmt.Fprintln(os.Stderr, "error reading input:", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if sh.Dispatch(ctx, input) {
			fmt.Fprintln(out, "bye")
			break
		}
	}

	if f, err := os.Create(historyFile()); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunRejectsUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"--not-a-real-flag"}, &out)
	if code != 1 {
		t.Errorf("run(unknown flag) = %d, want 1", code)
	}
}

func TestDefaultConfigPathIsUnderHome(t *testing.T) {
	p := defaultConfigPath()
	if !strings.HasSuffix(p, ".machscan.jsonc") {
		t.Errorf("defaultConfigPath() = %q, want it to end in .machscan.jsonc", p)
	}
}

func TestHistoryFilePath(t *testing.T) {
	p := historyFile()
	if p != "" && !strings.HasSuffix(p, ".machscan_history") {
		t.Errorf("historyFile() = %q, want it to end in .machscan_history", p)
	}
}

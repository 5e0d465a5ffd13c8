package resultfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/machscan/machscan/internal/scan"
	"github.com/machscan/machscan/internal/valuetype"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	want := []scan.Candidate{
		{Address: 0x1000, Type: valuetype.Int, Bytes: []byte{100, 0, 0, 0}, Rendered: "100"},
		{Address: 0x2000, Type: valuetype.String, Bytes: []byte("HELLO"), Rendered: "HELLO"},
		{Address: 0x3000, Type: valuetype.Float, Bytes: []byte{0, 0, 96, 64}, Rendered: "3.5"},
	}

	path := filepath.Join(t.TempDir(), "results.txt")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEmptyResultSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := Save(path, nil); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load(empty save) = %v, want empty", got)
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commented.txt")
	writeRaw(t, path, header+"\n# a hand-written comment\n0,0x10,0,09,9\n\n")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 1 || got[0].Address != 0x10 {
		t.Errorf("Load() = %+v, want one candidate at 0x10", got)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	writeRaw(t, path, header+"0,0xZZ,1,ff,bad\n")

	if _, err := Load(path); err == nil {
		t.Error("Load with an unparseable address: expected error, got nil")
	}
}

func writeRaw(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

// Package resultfile persists a scan result set to and from the
// line-oriented save-file format defined by the CLI surface spec. Saves
// are durable and torn-write-free via an atomic rename.
package resultfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/machscan/machscan/internal/scan"
	"github.com/machscan/machscan/internal/scanerr"
	"github.com/machscan/machscan/internal/valuetype"
)

const header = "# machscan saved results\n# Format: ID,Address,Type,ValueHex,Rendered\n"

// Save writes candidates to path in the spec §6 format:
//
//	<id>,0x<addr_hex>,<type_ordinal>,<bytes_hex>,<rendered>
//
// bytes_hex is lowercase, unseparated hex. The write is atomic: a partial
// or interrupted write never corrupts an existing save file.
func Save(path string, candidates []scan.Candidate) error {
	var sb strings.Builder
	sb.WriteString(header)

	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d,0x%x,%d,%s,%s\n",
			i, c.Address, int(c.Type), hex.EncodeToString(c.Bytes), c.Rendered)
	}

	return atomic.WriteFile(path, strings.NewReader(sb.String()))
}

// Load reads a save file produced by Save (or written by hand in the
// same format) and returns the candidates it describes, in file order.
func Load(path string) ([]scan.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening save file: %w", err)
	}
	defer f.Close()

	var out []scan.Candidate
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", scanerr.ErrMalformedLiteral, lineNo, err)
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}

	return out, nil
}

func parseLine(line string) (scan.Candidate, error) {
	fields := strings.SplitN(line, ",", 5)
	if len(fields) != 5 {
		return scan.Candidate{}, fmt.Errorf("expected 5 comma-separated fields, got %d", len(fields))
	}

	addrField := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")
	addr, err := strconv.ParseUint(addrField, 16, 64)
	if err != nil {
		return scan.Candidate{}, fmt.Errorf("invalid address %q: %w", fields[1], err)
	}

	ordinal, err := strconv.Atoi(fields[2])
	if err != nil {
		return scan.Candidate{}, fmt.Errorf("invalid type ordinal %q: %w", fields[2], err)
	}
	t := valuetype.Type(ordinal)

	raw, err := hex.DecodeString(fields[3])
	if err != nil {
		return scan.Candidate{}, fmt.Errorf("invalid hex bytes %q: %w", fields[3], err)
	}

	return scan.Candidate{
		Address:  addr,
		Type:     t,
		Bytes:    raw,
		Rendered: fields[4],
	}, nil
}

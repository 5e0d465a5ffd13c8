// Package valuetype defines the typed value codec: conversion between a
// human string and a fixed-width byte pattern, reinterpretation of raw
// bytes back to a displayable form, and comparison predicates over two
// byte patterns of a given type.
package valuetype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/machscan/machscan/internal/scanerr"
)

// Type is a tagged enumeration of the supported scan value types.
// Declaration order matches the ordinal used by the save-file format.
type Type int

const (
	Byte Type = iota
	Short
	Int
	Long
	Float
	Double
	String
)

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType maps a case-insensitive CLI type token to a Type.
func ParseType(token string) (Type, error) {
	switch strings.ToLower(token) {
	case "byte":
		return Byte, nil
	case "short":
		return Short, nil
	case "int":
		return Int, nil
	case "long":
		return Long, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "string":
		return String, nil
	default:
		return 0, fmt.Errorf("%w: %q", scanerr.ErrUnknownType, token)
	}
}

// Op is a comparison predicate applied during scanning.
type Op int

const (
	Eq Op = iota
	Gt
	Lt
	Changed
	Unchanged
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "exact"
	case Gt:
		return "greater"
	case Lt:
		return "less"
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp maps a case-insensitive CLI op token to an Op.
func ParseOp(token string) (Op, error) {
	switch strings.ToLower(token) {
	case "", "exact", "eq":
		return Eq, nil
	case "greater", "gt":
		return Gt, nil
	case "less", "lt":
		return Lt, nil
	case "changed":
		return Changed, nil
	case "unchanged":
		return Unchanged, nil
	default:
		return 0, fmt.Errorf("%w: %q", scanerr.ErrUnknownOp, token)
	}
}

// handler holds the per-Type behavior named in the Design Notes: width,
// parse, render, and ordered comparison, replacing a combinatorial switch
// with a lookup table.
type handler struct {
	// width is the fixed byte width for numeric types, or 0 for String
	// (variable width, carried in the byte pattern's own length).
	width int

	parse  func(s string) ([]byte, error)
	render func(b []byte) string

	// less reports a < b for Gt/Lt; nil for types with no ordering. Every
	// numeric type is ordered; String is the one unordered type (nil less,
	// ordered=false below).
	less    func(a, b []byte) bool
	ordered bool
}

var handlers = map[Type]handler{
	Byte: {
		width: 1,
		parse: func(s string) ([]byte, error) {
			v, err := parseUint(s, 8)
			if err != nil {
				return nil, err
			}
			return []byte{byte(v)}, nil
		},
		render: func(b []byte) string { return strconv.FormatUint(uint64(b[0]), 10) },
		less:   func(a, b []byte) bool { return a[0] < b[0] },
		ordered: true,
	},
	Short: {
		width: 2,
		parse: func(s string) ([]byte, error) {
			v, err := parseInt(s, 16)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, 2)
			binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
			return buf, nil
		},
		render: func(b []byte) string {
			return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10)
		},
		less: func(a, b []byte) bool {
			return int16(binary.LittleEndian.Uint16(a)) < int16(binary.LittleEndian.Uint16(b))
		},
		ordered: true,
	},
	Int: {
		width: 4,
		parse: func(s string) ([]byte, error) {
			v, err := parseInt(s, 32)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
			return buf, nil
		},
		render: func(b []byte) string {
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10)
		},
		less: func(a, b []byte) bool {
			return int32(binary.LittleEndian.Uint32(a)) < int32(binary.LittleEndian.Uint32(b))
		},
		ordered: true,
	},
	Long: {
		width: 8,
		parse: func(s string) ([]byte, error) {
			v, err := parseInt(s, 64)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, uint64(v))
			return buf, nil
		},
		render: func(b []byte) string {
			return strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10)
		},
		less: func(a, b []byte) bool {
			return int64(binary.LittleEndian.Uint64(a)) < int64(binary.LittleEndian.Uint64(b))
		},
		ordered: true,
	},
	Float: {
		width: 4,
		parse: func(s string) ([]byte, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", scanerr.ErrMalformedLiteral, s)
			}
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
			return buf, nil
		},
		render: func(b []byte) string {
			v := math.Float32frombits(binary.LittleEndian.Uint32(b))
			return strconv.FormatFloat(float64(v), 'g', -1, 32)
		},
		less: func(a, b []byte) bool {
			af := math.Float32frombits(binary.LittleEndian.Uint32(a))
			bf := math.Float32frombits(binary.LittleEndian.Uint32(b))
			return af < bf // NaN comparisons are always false, matching spec
		},
		ordered: true,
	},
	Double: {
		width: 8,
		parse: func(s string) ([]byte, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", scanerr.ErrMalformedLiteral, s)
			}
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			return buf, nil
		},
		render: func(b []byte) string {
			v := math.Float64frombits(binary.LittleEndian.Uint64(b))
			return strconv.FormatFloat(v, 'g', -1, 64)
		},
		less: func(a, b []byte) bool {
			return math.Float64frombits(binary.LittleEndian.Uint64(a)) < math.Float64frombits(binary.LittleEndian.Uint64(b))
		},
		ordered: true,
	},
	String: {
		width: 0,
		parse: func(s string) ([]byte, error) {
			return []byte(s), nil
		},
		render: func(b []byte) string {
			return string(b)
		},
		ordered: false,
	},
}

// Width returns the fixed byte width for a numeric type, or 0 for String
// (whose width is the length of the search/watch pattern itself).
func Width(t Type) int {
	return handlers[t].width
}

// Parse converts a human string into the byte pattern for t. Integer
// literals accept decimal or 0x-prefixed hex; overflow is reported as
// ErrOutOfRange rather than silently truncated. String is taken verbatim
// and its length becomes the pattern width.
func Parse(t Type, s string) ([]byte, error) {
	h, ok := handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", scanerr.ErrUnknownType, t)
	}
	return h.parse(s)
}

// Render converts a byte pattern of type t back into a displayable string.
func Render(t Type, b []byte) string {
	h, ok := handlers[t]
	if !ok {
		return fmt.Sprintf("%x", b)
	}
	return h.render(b)
}

// Compare evaluates op over two byte patterns of type t. Eq, Changed, and
// Unchanged are bytewise and defined for every type; Gt/Lt require an
// ordered numeric type.
func Compare(t Type, left, right []byte, op Op) (bool, error) {
	switch op {
	case Eq:
		return bytesEqual(left, right), nil
	case Changed:
		return !bytesEqual(left, right), nil
	case Unchanged:
		return bytesEqual(left, right), nil
	case Gt, Lt:
		h, ok := handlers[t]
		if !ok || !h.ordered {
			return false, fmt.Errorf("%w: %v %v", scanerr.ErrUnsupportedOp, op, t)
		}
		if op == Gt {
			return h.less(right, left), nil
		}
		return h.less(left, right), nil
	default:
		return false, fmt.Errorf("%w: %v", scanerr.ErrUnknownOp, op)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func parseUint(s string, bitSize int) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, bitSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", scanerr.ErrOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: %q", scanerr.ErrMalformedLiteral, s)
	}
	return v, nil
}

func parseInt(s string, bitSize int) (int64, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	if neg {
		digits = "-" + digits
	}

	// strconv.ParseInt range-checks natively against bitSize, including the
	// signed boundary (e.g. -0x80 fits an 8-bit type, -0x81 does not), which
	// a manual unsigned-parse-then-negate can get wrong right at the
	// boundary between positive and negative magnitude limits.
	v, err := strconv.ParseInt(digits, base, bitSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", scanerr.ErrOutOfRange, orig)
		}
		return 0, fmt.Errorf("%w: %q", scanerr.ErrMalformedLiteral, orig)
	}
	return v, nil
}

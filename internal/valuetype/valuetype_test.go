package valuetype

import (
	"errors"
	"testing"

	"github.com/machscan/machscan/internal/scanerr"
)

func TestParseRenderRoundTrip(t *testing.T) {
	tests := []struct {
		typ   Type
		input string
		want  string
	}{
		{Byte, "0", "0"},
		{Byte, "255", "255"},
		{Byte, "0xff", "255"},
		{Short, "-32768", "-32768"},
		{Short, "32767", "32767"},
		{Int, "100", "100"},
		{Int, "-100", "-100"},
		{Long, "9000000000", "9000000000"},
		{Long, "-9223372036854775808", "-9223372036854775808"},
		{Long, "9223372036854775807", "9223372036854775807"},
		{Float, "3.5", "3.5"},
		{Double, "3.14159", "3.14159"},
		{String, "HELLO", "HELLO"},
	}

	for _, tt := range tests {
		b, err := Parse(tt.typ, tt.input)
		if err != nil {
			t.Fatalf("Parse(%v, %q) error: %v", tt.typ, tt.input, err)
		}
		got := Render(tt.typ, b)
		if got != tt.want {
			t.Errorf("Render(Parse(%q)) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseOutOfRange(t *testing.T) {
	tests := []struct {
		typ   Type
		input string
	}{
		{Byte, "256"},
		{Byte, "-1"},
		{Short, "32768"},
		{Short, "-32769"},
		{Int, "2147483648"},
		{Long, "0x10000000000000000"},
		{Long, "18446744073709551615"}, // fits uint64 but not int64; must not silently wrap
		{Long, "9223372036854775808"},  // math.MaxInt64 + 1
	}

	for _, tt := range tests {
		_, err := Parse(tt.typ, tt.input)
		if err == nil {
			t.Errorf("Parse(%v, %q): expected error, got none", tt.typ, tt.input)
			continue
		}
		if !errors.Is(err, scanerr.ErrOutOfRange) && !errors.Is(err, scanerr.ErrMalformedLiteral) {
			t.Errorf("Parse(%v, %q) error = %v, want ErrOutOfRange or ErrMalformedLiteral", tt.typ, tt.input, err)
		}
	}
}

func TestCompareEq(t *testing.T) {
	a, _ := Parse(Int, "100")
	b, _ := Parse(Int, "100")
	c, _ := Parse(Int, "101")

	eq, err := Compare(Int, a, b, Eq)
	if err != nil || !eq {
		t.Fatalf("Compare(100,100,Eq) = %v, %v, want true, nil", eq, err)
	}

	neq, err := Compare(Int, a, c, Eq)
	if err != nil || neq {
		t.Fatalf("Compare(100,101,Eq) = %v, %v, want false, nil", neq, err)
	}
}

func TestCompareOrdering(t *testing.T) {
	low, _ := Parse(Int, "1")
	high, _ := Parse(Int, "2")

	gt, err := Compare(Int, high, low, Gt)
	if err != nil || !gt {
		t.Fatalf("Compare(2,1,Gt) = %v, %v, want true, nil", gt, err)
	}

	lt, err := Compare(Int, low, high, Lt)
	if err != nil || !lt {
		t.Fatalf("Compare(1,2,Lt) = %v, %v, want true, nil", lt, err)
	}
}

func TestCompareGtLtUnsupportedForString(t *testing.T) {
	a, _ := Parse(String, "abc")
	b, _ := Parse(String, "abd")

	if _, err := Compare(String, a, b, Gt); !errors.Is(err, scanerr.ErrUnsupportedOp) {
		t.Fatalf("Compare(String, Gt) error = %v, want ErrUnsupportedOp", err)
	}
}

func TestCompareNaNAlwaysFalse(t *testing.T) {
	nan, _ := Parse(Float, "NaN")
	one, _ := Parse(Float, "1")

	gt, err := Compare(Float, nan, one, Gt)
	if err != nil {
		t.Fatalf("Compare(NaN,1,Gt) error: %v", err)
	}
	if gt {
		t.Errorf("Compare(NaN,1,Gt) = true, want false")
	}

	lt, err := Compare(Float, nan, one, Lt)
	if err != nil {
		t.Fatalf("Compare(NaN,1,Lt) error: %v", err)
	}
	if lt {
		t.Errorf("Compare(NaN,1,Lt) = true, want false")
	}
}

func TestCompareChangedUnchanged(t *testing.T) {
	a, _ := Parse(Int, "5")
	b, _ := Parse(Int, "5")
	c, _ := Parse(Int, "6")

	unchanged, _ := Compare(Int, a, b, Unchanged)
	if !unchanged {
		t.Error("Compare(5,5,Unchanged) = false, want true")
	}
	changed, _ := Compare(Int, a, c, Changed)
	if !changed {
		t.Error("Compare(5,6,Changed) = false, want true")
	}
}

func TestParseTypeCaseInsensitive(t *testing.T) {
	for _, s := range []string{"INT", "Int", "int"} {
		ty, err := ParseType(s)
		if err != nil || ty != Int {
			t.Errorf("ParseType(%q) = %v, %v, want Int, nil", s, ty, err)
		}
	}
}

func TestParseTypeUnknown(t *testing.T) {
	if _, err := ParseType("bogus"); !errors.Is(err, scanerr.ErrUnknownType) {
		t.Errorf("ParseType(bogus) error = %v, want ErrUnknownType", err)
	}
}

func TestParseOpDefaultsToExact(t *testing.T) {
	op, err := ParseOp("")
	if err != nil || op != Eq {
		t.Errorf("ParseOp(\"\") = %v, %v, want Eq, nil", op, err)
	}
}

func TestStringWidthIsPatternLength(t *testing.T) {
	b, err := Parse(String, "HELLO")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(b) != 5 {
		t.Errorf("len(Parse(String, HELLO)) = %d, want 5", len(b))
	}
}

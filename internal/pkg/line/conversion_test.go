package line

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"0", 0, true},
		{"0.5", 0.5, true},
		{"-1.25", -1.25, true},
		{"+0.75", 0.75, true},
		{" 1 ", 1, true},
		{"0/0.5", 0.25, true},
		{"0.5/1", 0.75, true},
		{"-0.5/1", -0.75, true},
		{"-0/0.5", -0.25, true},
		{"-1/-1.5", -1.25, true},
		{"2.5/3", 2.75, true},
		{"2.5 / 3", 2.75, true},
		{"1.13", 1.13, true},
		{"", 0, false},
		{"-", 0, false},
		{"?", 0, false},
		{"N/A", 0, false},
		{"abc", 0, false},
		{"1/2/3", 0, false},
		{"0.5/", 0, false},
		{"NaN", 0, false},
		{"0x1p-2", 0, false},
		{"0X1P-2", 0, false},
		{"0/0x1p-1", 0, false},
		{"1_0", 0, false},
		{"Inf", 0, false},
		{"1e0", 1, true},
		{".5", 0.5, true},
	}
	for _, tt := range tests {
		got := Parse(tt.raw)
		if got.Valid != tt.valid {
			t.Errorf("Parse(%q).Valid = %v, want %v", tt.raw, got.Valid, tt.valid)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got.Value, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"0.1", "0"},
		{"1.13", "1"},
		{"1.4", "1.5"},
		{"1.9", "2"},
		{"-1.9", "-2"},
		{"0.25", "0.25"},
		{"-0/0.5", "-0.25"},
		{"0/0.5", "0.25"},
		{"-0.5/1", "-0.75"},
		{"1/1.5", "1.25"},
		{"2.5/3", "2.75"},
		{"-1.5", "-1.5"},
		{"2", "2"},
		{"-", "-"},
		{"?", "?"},
		{" ? ", "?"},
		{"", "-"},
		{"N/A", "-"},
		{"1/2/3", "-"},
	}
	for _, tt := range tests {
		if got := Format(tt.raw); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{"0", "1.13", "1.4", "-0/0.5", "0.5/1", "-2.25", "3.75", "-0.6", "2.5/3", "?", "-", "junk"}
	for _, in := range inputs {
		once := Format(in)
		twice := Format(once)
		if once != twice {
			t.Errorf("Format not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeMatchesDisplay(t *testing.T) {
	inputs := []string{"1.13", "1.4", "-0/0.5", "0.3", "-2.8"}
	for _, in := range inputs {
		n := Normalize(in)
		if !n.Valid {
			t.Fatalf("Normalize(%q) invalid", in)
		}
		if got := Parse(Format(in)); got.Value != n.Value {
			t.Errorf("Normalize(%q) = %v, but display %q parses to %v", in, n.Value, Format(in), got.Value)
		}
	}
	if Normalize("?").Valid {
		t.Error("Normalize(\"?\") should be invalid")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.13, 1},
		{1.25, 1.25},
		{1.4, 1.5},
		{1.5, 1.5},
		{1.6, 1.5},
		{1.75, 1.75},
		{1.8, 2},
		{-1.4, -1.5},
		{-0.25, -0.25},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLineJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Line `json:"a"`
		B Line `json:"b"`
	}{A: Of(-0.25), B: Line{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":-0.25,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back struct {
		A Line `json:"a"`
		B Line `json:"b"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.A.Valid || back.A.Value != -0.25 || back.B.Valid {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

package util

import (
	"strings"
	"testing"
)

func TestToInt(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "plain", input: "120", want: 120},
		{name: "padded", input: " 7 ", want: 7},
		{name: "fraction truncates", input: "3.9", want: 3},
		{name: "sentinel", input: "unknown", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "nan", input: "NaN", want: 0},
		{name: "grouped is not numeric", input: "1,000", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToInt(tc.input); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestToFloatKeepsFractions(t *testing.T) {
	if got := ToFloat("0.0123"); got != 0.0123 {
		t.Fatalf("got %v", got)
	}
	if got := ToFloat("unknown"); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := ToFloat("+Inf"); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestFirstInt(t *testing.T) {
	cases := map[string]int{
		"3 weeks":       3,
		"approx 12-14d": 12,
		"unknown":       0,
		"":              0,
		"007":           7,
	}
	for input, want := range cases {
		if got := FirstInt(input); got != want {
			t.Fatalf("FirstInt(%q)=%d want %d", input, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1500); got != "1500" {
		t.Fatalf("got %s", got)
	}
	if got := FormatNumber(0.25); got != "0.25" {
		t.Fatalf("got %s", got)
	}
}

func TestRedactSecrets(t *testing.T) {
	in := `Get "https://api.test/partsearch?apiKey=abc123&searchTerm=X": dial tcp: timeout`
	out := RedactSecrets(in)
	if strings.Contains(out, "abc123") {
		t.Fatalf("key leaked: %s", out)
	}
	if !strings.Contains(out, "searchTerm=X") {
		t.Fatalf("over-redacted: %s", out)
	}
}

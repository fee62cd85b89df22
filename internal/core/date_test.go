package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-05", "2024-01-05", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"2024-01-05T10:30:00", "2024-01-05", true},
		{"2024-01-05T23:30:00+08:00", "2024-01-05", true},
		{"2024-01-05 08:00:00", "2024-01-05", true},
		{"05/01/2024", "", false},
		{"2024-13-01", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDateOr(t *testing.T) {
	fallback := NewDate(2024, 2, 29)
	got, err := ParseDateOr("", fallback)
	if err != nil || !got.Equal(fallback) {
		t.Fatalf("expected fallback, got %s (err=%v)", got, err)
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2024, 2, 28)
	if d.AddDays(1).String() != "2024-02-29" {
		t.Fatalf("leap day expected, got %s", d.AddDays(1))
	}
	if (Date{}).String() != "" {
		t.Fatal("zero date should format empty")
	}
	if err := (Date{}).Validate(); err == nil {
		t.Fatal("zero date should not validate")
	}
	local := time.Date(2024, 3, 1, 23, 59, 0, 0, time.FixedZone("X", 8*3600))
	if DateOf(local).String() != "2024-03-01" {
		t.Fatalf("DateOf must keep the local calendar day, got %s", DateOf(local))
	}
}

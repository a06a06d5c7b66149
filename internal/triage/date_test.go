package triage

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("2026-09-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-09-01" {
		t.Errorf("String() = %q, want 2026-09-01", d.String())
	}
	if got := d.Time(); !got.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %v", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"not-a-date", "2026-13-01", "01/02/2026"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) expected error", s)
		}
	}
}

func TestDate_AddDays(t *testing.T) {
	d, _ := ParseDate("2026-03-01")
	if got := d.AddDays(-1).String(); got != "2026-02-28" {
		t.Errorf("AddDays(-1) = %q, want 2026-02-28", got)
	}
	if got := d.AddDays(31).String(); got != "2026-04-01" {
		t.Errorf("AddDays(31) = %q, want 2026-04-01", got)
	}
}

func TestDate_JSON(t *testing.T) {
	d, _ := ParseDate("2026-09-01")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2026-09-01"` {
		t.Errorf("Marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	var null Date
	if err := json.Unmarshal([]byte("null"), &null); err != nil {
		t.Fatalf("Unmarshal null: %v", err)
	}
	if !null.IsZero() {
		t.Errorf("null date = %v, want zero", null)
	}
}

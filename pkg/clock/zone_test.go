package clock

import (
	"testing"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

func TestToZonedInstant(t *testing.T) {
	cases := []struct {
		name  string
		local LocalDateTime
		zone  string
		want  time.Time
	}{
		{"kiev winter", LocalDateTime{2024, time.January, 15, 10, 0, 0}, "Europe/Kiev", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)},
		{"kiev summer", LocalDateTime{2024, time.July, 15, 10, 0, 0}, "Europe/Kiev", time.Date(2024, 7, 15, 7, 0, 0, 0, time.UTC)},
		{"kiev spring gap", LocalDateTime{2024, time.March, 31, 3, 30, 0}, "Europe/Kiev", time.Date(2024, 3, 31, 1, 30, 0, 0, time.UTC)},
		{"new york after fall back", LocalDateTime{2024, time.November, 3, 12, 0, 0}, "America/New_York", time.Date(2024, 11, 3, 17, 0, 0, 0, time.UTC)},
		{"utc", LocalDateTime{2024, time.May, 1, 9, 15, 30}, "UTC", time.Date(2024, 5, 1, 9, 15, 30, 0, time.UTC)},
		{"kiev ambiguous fall back", LocalDateTime{2024, time.October, 27, 3, 30, 0}, "Europe/Kiev", time.Date(2024, 10, 27, 1, 30, 0, 0, time.UTC)},
		{"new york ambiguous fall back", LocalDateTime{2024, time.November, 3, 1, 30, 0}, "America/New_York", time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC)},
		{"new york spring gap", LocalDateTime{2024, time.March, 10, 2, 30, 0}, "America/New_York", time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ToZonedInstant(tc.local, tc.zone)
		if err != nil {
			t.Fatalf("%s: ToZonedInstant failed: %v", tc.name, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
		if got.Location() != time.UTC {
			t.Errorf("%s: expected UTC result, got %s", tc.name, got.Location())
		}
	}
}

func TestToZonedInstantRejectsInvalidInput(t *testing.T) {
	if _, err := ToZonedInstant(LocalDateTime{2023, time.February, 29, 10, 0, 0}, "UTC"); model.KindOf(err) != model.KindValidation {
		t.Errorf("Expected validation failure for Feb 29 2023, got %v", err)
	}
	if _, err := ToZonedInstant(LocalDateTime{2024, time.May, 1, 24, 0, 0}, "UTC"); model.KindOf(err) != model.KindValidation {
		t.Errorf("Expected validation failure for hour 24, got %v", err)
	}
	if _, err := ToZonedInstant(LocalDateTime{2024, time.May, 1, 9, 0, 0}, "Mars/Olympus"); model.KindOf(err) != model.KindValidation {
		t.Errorf("Expected validation failure for unknown zone, got %v", err)
	}
}

func TestWallClockIgnoresSourceOffset(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	if err != nil {
		t.Fatalf("LoadZone failed: %v", err)
	}
	src := time.Date(2024, 6, 1, 18, 45, 0, 0, ny)
	got, err := ToZonedInstant(WallClock(src), "Europe/Kiev")
	if err != nil {
		t.Fatalf("ToZonedInstant failed: %v", err)
	}
	want := time.Date(2024, 6, 1, 15, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestParseLocal(t *testing.T) {
	got, err := ParseLocal(" 2024-05-01 09:30 ")
	if err != nil {
		t.Fatalf("ParseLocal failed: %v", err)
	}
	if got != (LocalDateTime{2024, time.May, 1, 9, 30, 0}) {
		t.Errorf("Unexpected parse result: %s", got)
	}
	if _, err := ParseLocal("tomorrow"); model.KindOf(err) != model.KindValidation {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestFormatISO(t *testing.T) {
	kiev, _ := LoadZone("Europe/Kiev")
	ts := time.Date(2024, 7, 15, 10, 0, 0, 0, kiev)
	if got := FormatISO(ts); got != "2024-07-15T07:00:00.000Z" {
		t.Errorf("Expected 2024-07-15T07:00:00.000Z, got %s", got)
	}
}

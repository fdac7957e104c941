package models

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		want   Clock
		wantOK bool
	}{
		{"14:30", Clock{Hour: 14, Minute: 30}, true},
		{"09:05", Clock{Hour: 9, Minute: 5}, true},
		{"9:5", Clock{Hour: 9, Minute: 5}, true},
		{" 23:59 ", Clock{Hour: 23, Minute: 59}, true},
		{"14:30:45", Clock{14, 30, 45}, true},
		{"", Clock{}, false},
		{"   ", Clock{}, false},
		{"TBD", Clock{}, false},
		{"25:00", Clock{}, false},
		{"12:60", Clock{}, false},
		{"12", Clock{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseClock(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestClockString(t *testing.T) {
	if got := NewClock(9, 5).String(); got != "09:05" {
		t.Fatalf("expected zero-padded form, got %q", got)
	}
}

func TestDurationSecondsCrossesMidnight(t *testing.T) {
	if got := DurationSeconds(NewClock(23, 30), NewClock(0, 15)); got != 45*60 {
		t.Fatalf("expected 2700, got %d", got)
	}
	if got := DurationSeconds(NewClock(20, 0), NewClock(21, 30)); got != 90*60 {
		t.Fatalf("expected 5400, got %d", got)
	}
}

func TestActVariances(t *testing.T) {
	start := NewClock(20, 5)
	end := NewClock(21, 2)
	act := Act{
		ActName:        "Headliner",
		ScheduledStart: NewClock(20, 0),
		ScheduledEnd:   NewClock(21, 0),
		ActualStart:    &start,
		ActualEnd:      &end,
	}

	if v, ok := act.StartVariance(); !ok || v != 300 {
		t.Fatalf("start variance = %d, %v; want 300, true", v, ok)
	}
	if v, ok := act.EndVariance(); !ok || v != 120 {
		t.Fatalf("end variance = %d, %v; want 120, true", v, ok)
	}
	if d := act.ScheduledDuration(); d != 3600 {
		t.Fatalf("scheduled duration = %d; want 3600", d)
	}

	unstarted := Act{ScheduledStart: NewClock(20, 0), ScheduledEnd: NewClock(21, 0)}
	if _, ok := unstarted.StartVariance(); ok {
		t.Fatal("expected no start variance before the act starts")
	}
	if _, ok := unstarted.EndVariance(); ok {
		t.Fatal("expected no end variance before the act ends")
	}
}

package dateformat

import (
	"testing"
	"time"
)

func TestFormatDateSpecs(t *testing.T) {
	ts := time.Date(2024, time.March, 2, 15, 4, 5, 123456000, time.UTC)
	f := New()

	tests := []struct {
		spec string
		want string
	}{
		{spec: "m/d/Y", want: "03/02/2024"},
		{spec: "php:m/d/Y H:i:s", want: "03/02/2024 15:04:05"},
		{spec: "", want: "03/02/2024 15:04:05"},
		{spec: "php:D, jS F y", want: "Sat, 2nd March 24"},
		{spec: `php:\Y\e\a\r: Y`, want: "Year: 2024"},
		{spec: "php:g:i a", want: "3:04 pm"},
		{spec: "php:N w z t L", want: "6 6 61 31 1"},
		{spec: "php:G u v", want: "15 123456 123"},
		{spec: "php:U", want: "1709391845"},
		{spec: "php:c", want: "2024-03-02T15:04:05+00:00"},
		{spec: "strftime:%Y-%m-%d %H:%M", want: "2024-03-02 15:04"},
		{spec: "go:2006/01/02", want: "2024/03/02"},
		{spec: "short", want: "03/02/2024"},
		{spec: "medium", want: "Mar 2, 2024 3:04 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := f.FormatDate(ts, tt.spec); got != tt.want {
				t.Fatalf("FormatDate(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 23: "rd", 31: "st"}
	for day, want := range cases {
		if got := ordinalSuffix(day); got != want {
			t.Fatalf("ordinalSuffix(%d) = %q, want %q", day, got, want)
		}
	}
}

func TestFormatDateLocalizedNames(t *testing.T) {
	ts := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)
	f := New(WithLocale("de"))

	if got := f.FormatDate(ts, "php:l"); got != "Montag" {
		t.Fatalf("expected German weekday, got %q", got)
	}
	en := f.ForLocale("en_US")
	if got := en.FormatDate(ts, "php:F"); got != "March" {
		t.Fatalf("expected English month, got %q", got)
	}
}

func TestFormatDateLocation(t *testing.T) {
	loc := time.FixedZone("X", 2*60*60)
	f := New(WithLocation(loc))
	ts := time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)
	if got := f.FormatDate(ts, "php:Y-m-d H:i O"); got != "2024-01-02 01:00 +0200" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFuncAdapter(t *testing.T) {
	var f Formatter = Func(func(t time.Time, spec string) string { return spec })
	if got := f.FormatDate(time.Time{}, "x"); got != "x" {
		t.Fatalf("unexpected output %q", got)
	}
}

package dateformat

import (
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// Go layouts for PHP date() letters that have a direct equivalent. Name
// letters are rendered through monday so they follow the locale.
var phpLayouts = map[byte]string{
	'd': "02",
	'D': "Mon",
	'j': "2",
	'l': "Monday",
	'F': "January",
	'm': "01",
	'M': "Jan",
	'n': "1",
	'Y': "2006",
	'y': "06",
	'a': "pm",
	'A': "PM",
	'g': "3",
	'h': "03",
	'H': "15",
	'i': "04",
	's': "05",
	'T': "MST",
	'P': "-07:00",
	'p': "Z07:00",
	'O': "-0700",
}

var localizedLetters = map[byte]bool{'D': true, 'l': true, 'F': true, 'M': true}

// formatPHP renders layout using PHP date() semantics. A backslash emits the
// next byte verbatim; unknown letters are copied as-is.
func formatPHP(t time.Time, layout string, locale monday.Locale) string {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c == '\\' {
			if i+1 < len(layout) {
				i++
				b.WriteByte(layout[i])
			}
			continue
		}
		b.WriteString(phpToken(t, c, locale))
	}
	return b.String()
}

func phpToken(t time.Time, c byte, locale monday.Locale) string {
	if goLayout, ok := phpLayouts[c]; ok {
		if localizedLetters[c] {
			return monday.Format(t, goLayout, locale)
		}
		return t.Format(goLayout)
	}
	switch c {
	case 'N':
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	case 'w':
		return strconv.Itoa(int(t.Weekday()))
	case 'S':
		return ordinalSuffix(t.Day())
	case 'z':
		return strconv.Itoa(t.YearDay() - 1)
	case 'W':
		_, week := t.ISOWeek()
		return pad2(week)
	case 'o':
		year, _ := t.ISOWeek()
		return strconv.Itoa(year)
	case 't':
		return strconv.Itoa(daysIn(t))
	case 'L':
		if daysInYear(t.Year()) == 366 {
			return "1"
		}
		return "0"
	case 'G':
		return strconv.Itoa(t.Hour())
	case 'u':
		return pad(t.Nanosecond()/int(time.Microsecond), 6)
	case 'v':
		return pad(t.Nanosecond()/int(time.Millisecond), 3)
	case 'e':
		return t.Location().String()
	case 'I':
		if t.IsDST() {
			return "1"
		}
		return "0"
	case 'Z':
		_, offset := t.Zone()
		return strconv.Itoa(offset)
	case 'U':
		return strconv.FormatInt(t.Unix(), 10)
	case 'c':
		return t.Format("2006-01-02T15:04:05-07:00")
	case 'r':
		return t.Format("Mon, 02 Jan 2006 15:04:05 -0700")
	default:
		return string(c)
	}
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

func pad2(n int) string { return pad(n, 2) }

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

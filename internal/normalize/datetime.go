package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"golang.org/x/text/width"
)

// DateOrder is the canonical field order of a two-part date.
type DateOrder int

const (
	MonthDay DateOrder = iota
	DayMonth
)

var dateOrders = map[domain.Locale]DateOrder{
	domain.LocaleKR: MonthDay,
	domain.LocaleUS: MonthDay,
	domain.LocaleJP: MonthDay,
	domain.LocaleCN: MonthDay,
	domain.LocaleCA: MonthDay,
	domain.LocaleGB: DayMonth,
	domain.LocaleFR: DayMonth,
	domain.LocaleAU: DayMonth,
	domain.LocaleDE: DayMonth,
}

// OrderFor returns the date field order of a locale.
func OrderFor(locale domain.Locale) (DateOrder, bool) {
	o, ok := dateOrders[locale]
	return o, ok
}

var (
	dateUnits = strings.NewReplacer(
		"年", "/", "月", "/", "日", "",
		"년", "/", "월", "/", "일", "",
		" ", "",
	)
	timeUnits = strings.NewReplacer(
		"時", ":", "时", ":", "分", "",
		"시", ":", "분", "",
		"h", ":", "H", ":",
	)

	dateSeparators = regexp.MustCompile(`[/.\-]`)
	timeLiteral    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp])?\.?(?:[Mm]\.?)?$`)
)

// ParseDateTime combines a date part ("10/13", "13.10.", "2024年10月13日")
// and a time part ("15:48", "3:48 PM") into a timestamp in now's location.
// Two-part dates follow the locale's field order and take the year of now;
// a date carrying a four-digit year uses that year verbatim.
func ParseDateTime(datePart, timePart string, locale domain.Locale, now time.Time) (time.Time, error) {
	order, ok := dateOrders[locale]
	if !ok {
		return time.Time{}, fmt.Errorf("ParseDateTime: %s: %w", locale, domain.ErrUnsupportedLocale)
	}

	year, month, day, err := parseDate(datePart, order, now.Year())
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDateTime: %w", err)
	}

	hour, minute, second, err := parseTime(timePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDateTime: %w", err)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, now.Location())
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("ParseDateTime: %q is not a calendar date: %w", datePart, ErrMalformedDate)
	}
	return t, nil
}

// DateTimeOr parses like ParseDateTime but degrades to now on failure, so a
// bad date never discards an otherwise usable extraction.
func DateTimeOr(datePart, timePart string, locale domain.Locale, now time.Time) time.Time {
	t, err := ParseDateTime(datePart, timePart, locale, now)
	if err != nil {
		return now
	}
	return t
}

func parseDate(raw string, order DateOrder, currentYear int) (year, month, day int, err error) {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = dateUnits.Replace(s)
	s = strings.Trim(s, "/.-")
	if s == "" {
		return 0, 0, 0, fmt.Errorf("empty date: %w", ErrMalformedDate)
	}

	parts := dateSeparators.Split(s, -1)
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || p == "" {
			return 0, 0, 0, fmt.Errorf("date %q: %w", raw, ErrMalformedDate)
		}
		nums[i] = n
	}

	switch len(parts) {
	case 2:
		year = currentYear
		month, day = nums[0], nums[1]
		if order == DayMonth {
			month, day = nums[1], nums[0]
		}
	case 3:
		switch {
		case len(parts[0]) == 4:
			year, month, day = nums[0], nums[1], nums[2]
		case len(parts[2]) == 4:
			year = nums[2]
			month, day = nums[0], nums[1]
			if order == DayMonth {
				month, day = nums[1], nums[0]
			}
		default:
			return 0, 0, 0, fmt.Errorf("date %q has no four-digit year: %w", raw, ErrMalformedDate)
		}
	default:
		return 0, 0, 0, fmt.Errorf("date %q: %w", raw, ErrMalformedDate)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("date %q out of range: %w", raw, ErrMalformedDate)
	}
	return year, month, day, nil
}

func parseTime(raw string) (hour, minute, second int, err error) {
	s := strings.TrimSpace(width.Narrow.String(raw))
	if s == "" {
		return 0, 0, 0, nil
	}
	s = strings.TrimSpace(timeUnits.Replace(s))
	s = strings.TrimSuffix(strings.ReplaceAll(s, ": ", ":"), ":")

	m := timeLiteral.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("time %q: %w", raw, ErrMalformedDate)
	}

	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	switch strings.ToUpper(m[4]) {
	case "A":
		if hour < 1 || hour > 12 {
			return 0, 0, 0, fmt.Errorf("time %q: %w", raw, ErrMalformedDate)
		}
		if hour == 12 {
			hour = 0
		}
	case "P":
		if hour < 1 || hour > 12 {
			return 0, 0, 0, fmt.Errorf("time %q: %w", raw, ErrMalformedDate)
		}
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, fmt.Errorf("time %q out of range: %w", raw, ErrMalformedDate)
	}
	return hour, minute, second, nil
}

package parse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	dateRe     = regexp.MustCompile(`\w*\s+(\w+)\s+(\d{1,2})[,\s]+(\d{4})\s+(\d{1,2}):(\d{1,2})\s+(\w{2})`)
	moneyRe    = regexp.MustCompile(`^\$?([\d,]*\.\d*)`)
	durationRe = regexp.MustCompile(`^(\d*\.?\d?)\+?\s(\w*)`)
	phoneRe    = regexp.MustCompile(`\(?(\d{3})[).-]*\s*(\d{3})[-.]*(\d{4})`)
	capacityRe = regexp.MustCompile(`^(\d*)\s?attending\s?/?\s?([\d\w]*)\s?limit`)
)

var months = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

var hoursPerDay = decimal.NewFromInt(24)

// DateTime parses "<Weekday> <Month> <Day>, <Year> <H>:<M> <AM|PM>" and
// returns the weekday name alongside the parsed time.
//
// The 12-hour conversion is inherited as-is: PM with hour != 12 adds twelve,
// and "12:xx AM" keeps hour 12. Callers must not "fix" this without also
// migrating previously persisted records.
func DateTime(s string) (weekday string, t time.Time, ok bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return "", time.Time{}, false
	}

	month, ok := months[m[1]]
	if !ok {
		return "", time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if strings.EqualFold(m[6], "pm") && hour != 12 {
		hour += 12
	}
	if hour > 23 || minute > 59 {
		return "", time.Time{}, false
	}

	t = time.Date(year, month, day, hour, minute, 0, 0, time.Local)
	return t.Weekday().String(), t, true
}

// Money extracts a leading dollar amount like "$1,234.50" from a cost field.
// The amount must carry a decimal point; the site always renders cents, so a
// bare "12" is treated as unparseable rather than guessed at. Empty or
// non-numeric input reports ok=false, never zero, so "no amount present" stays
// distinguishable from "zero amount".
func Money(s string) (decimal.Decimal, bool) {
	m := moneyRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Duration extracts a leading number and unit word from text like "3 hours"
// or "2 nights" and normalizes to hours: units containing "day" or "night"
// multiply by 24, anything else is assumed to already be hours.
func Duration(s string) (decimal.Decimal, bool) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Decimal{}, false
	}
	unit := strings.ToLower(m[2])
	if strings.Contains(unit, "night") || strings.Contains(unit, "day") {
		d = d.Mul(hoursPerDay)
	}
	return d, true
}

// Phone extracts the first three-part phone number group, in either
// "(AAA) BBB-CCCC" or "AAA-BBB-CCCC" shape, from an arbitrary address string
// and normalizes it to "AAA-BBB-CCCC".
func Phone(s string) (string, bool) {
	m := phoneRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
}

// Capacity parses an "<N> attending / <M|no> limit" phrase. A "no" limit
// means unlimited: limit and spotsLeft are both nil. Otherwise spotsLeft is
// limit - attendees, which may be negative when an event is overbooked; the
// negative value is preserved, not clamped.
func Capacity(s string) (attendees, limit, spotsLeft *int, ok bool) {
	m := capacityRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return nil, nil, nil, false
	}

	a, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil, nil, false
	}
	attendees = &a

	if m[2] == "no" {
		return attendees, nil, nil, true
	}
	l, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, nil, nil, false
	}
	spots := l - a
	return attendees, &l, &spots, true
}

// Hosts strips the photo markers from a host listing, sorts the individual
// names and joins them with " - " so host ordering is deterministic across
// scrapes of the same event.
func Hosts(s string) string {
	s = strings.ReplaceAll(s, "[Photo]", "")
	var names []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	sort.Strings(names)
	return strings.Join(names, " - ")
}

// Attire normalizes free-text attire ("casual", "DRESSY casual") to title
// case.
func Attire(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

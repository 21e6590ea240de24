package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// amountPatterns is the ordered cascade for monetary amounts. Patterns are
// tried in priority order against the whole text and the first match wins.
var amountPatterns = []*regexp.Regexp{
	// Currency symbol or code followed by a number: "$12.50", "EUR 42"
	regexp.MustCompile(`(?i)(?:\$|€|£|usd|eur|gbp)\s*([0-9]+(?:\.[0-9]{2})?)`),
	// Number followed by a currency symbol or code: "12.50 USD"
	regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]{2})?)\s*(?:\$|€|£|usd|eur|gbp)`),
	// "Total" with an optional currency marker: "Total: 45.00"
	regexp.MustCompile(`(?i)total\s*:?\s*(?:\$|€|£|usd|eur|gbp)?\s*([0-9]+(?:\.[0-9]{2})?)`),
	// "Amount" with an optional currency marker: "Amount 45.00"
	regexp.MustCompile(`(?i)amount\s*:?\s*(?:\$|€|£|usd|eur|gbp)?\s*([0-9]+(?:\.[0-9]{2})?)`),
}

// extractAmount returns the first amount matched by the pattern cascade,
// or 0 if no pattern matches. The numeric value comes from the first
// non-empty capture group of the winning pattern.
func extractAmount(text string) float64 {
	for _, pattern := range amountPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		for _, group := range match[1:] {
			if group == "" {
				continue
			}
			amount, err := strconv.ParseFloat(group, 64)
			if err != nil {
				continue
			}
			if amount > 0 {
				return amount
			}
		}
	}
	return 0
}

// datePattern pairs a regular expression with a parser for its capture
// groups. A pattern that matches but fails to parse into a valid calendar
// date falls through to the next pattern.
type datePattern struct {
	re    *regexp.Regexp
	parse func(match []string) (time.Time, bool)
}

var datePatterns = []datePattern{
	// Numeric day/month/year or month/day/year: "25/12/2023", "03-15-2024"
	{
		re:    regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
		parse: parseNumericDayMonth,
	},
	// Numeric year first: "2023/12/25", "2023-12-25"
	{
		re:    regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`),
		parse: parseNumericYearFirst,
	},
	// Day, month name, year: "25 December 2023", "3 Jan 2024"
	{
		re:    regexp.MustCompile(`(?i)\b(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})\b`),
		parse: parseDayMonthName,
	},
	// Month name, day, year: "Dec 25, 2023", "December 25 2023"
	{
		re:    regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`),
		parse: parseMonthNameDay,
	},
}

// extractDate returns the first valid calendar date matched by the date
// cascade, formatted as ISO 8601, or "" if no pattern yields one.
func extractDate(text string) string {
	for _, pattern := range datePatterns {
		match := pattern.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if date, ok := pattern.parse(match); ok {
			return date.Format("2006-01-02")
		}
	}
	return ""
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// civilDate validates the components as a real calendar date. time.Date
// normalizes out-of-range values (Feb 30 becomes Mar 1), so the result is
// checked against the inputs.
func civilDate(year int, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func normalizeYear(year int) int {
	if year < 100 {
		return 2000 + year
	}
	return year
}

// parseNumericDayMonth handles the ambiguous numeric form. Month-first is
// tried before day-first, so "03/15/2024" reads as March 15 while
// "25/12/2023" falls through to December 25.
func parseNumericDayMonth(match []string) (time.Time, bool) {
	first, _ := strconv.Atoi(match[1])
	second, _ := strconv.Atoi(match[2])
	year := normalizeYear(atoiOrZero(match[3]))

	if t, ok := civilDate(year, first, second); ok {
		return t, true
	}
	return civilDate(year, second, first)
}

func parseNumericYearFirst(match []string) (time.Time, bool) {
	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	return civilDate(year, month, day)
}

func parseDayMonthName(match []string) (time.Time, bool) {
	day, _ := strconv.Atoi(match[1])
	month, ok := monthsByPrefix[strings.ToLower(match[2])]
	if !ok {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(match[3])
	return civilDate(year, int(month), day)
}

func parseMonthNameDay(match []string) (time.Time, bool) {
	month, ok := monthsByPrefix[strings.ToLower(match[1])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	return civilDate(year, int(month), day)
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

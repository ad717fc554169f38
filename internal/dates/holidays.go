package dates

import "time"

// HolidayFunc resolves the name of a public holiday, if d is one.
type HolidayFunc func(d Date) (string, bool)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

// Japanese public holidays, keyed by exact day.
var holidays = map[dayKey]string{
	{2025, time.January, 1}:    "New Year's Day",
	{2025, time.January, 13}:   "Coming of Age Day",
	{2025, time.February, 11}:  "National Foundation Day",
	{2025, time.February, 23}:  "Emperor's Birthday",
	{2025, time.February, 24}:  "Substitute Holiday",
	{2025, time.March, 20}:     "Vernal Equinox Day",
	{2025, time.April, 29}:     "Showa Day",
	{2025, time.May, 3}:        "Constitution Memorial Day",
	{2025, time.May, 4}:        "Greenery Day",
	{2025, time.May, 5}:        "Children's Day",
	{2025, time.May, 6}:        "Substitute Holiday",
	{2025, time.July, 21}:      "Marine Day",
	{2025, time.August, 11}:    "Mountain Day",
	{2025, time.September, 15}: "Respect for the Aged Day",
	{2025, time.September, 23}: "Autumnal Equinox Day",
	{2025, time.October, 13}:   "Sports Day",
	{2025, time.November, 3}:   "Culture Day",
	{2025, time.November, 23}:  "Labor Thanksgiving Day",
	{2025, time.November, 24}:  "Substitute Holiday",

	{2026, time.January, 1}:    "New Year's Day",
	{2026, time.January, 12}:   "Coming of Age Day",
	{2026, time.February, 11}:  "National Foundation Day",
	{2026, time.February, 23}:  "Emperor's Birthday",
	{2026, time.March, 20}:     "Vernal Equinox Day",
	{2026, time.April, 29}:     "Showa Day",
	{2026, time.May, 3}:        "Constitution Memorial Day",
	{2026, time.May, 4}:        "Greenery Day",
	{2026, time.May, 5}:        "Children's Day",
	{2026, time.May, 6}:        "Substitute Holiday",
	{2026, time.July, 20}:      "Marine Day",
	{2026, time.August, 11}:    "Mountain Day",
	{2026, time.September, 21}: "Respect for the Aged Day",
	{2026, time.September, 22}: "Citizens' Holiday",
	{2026, time.September, 23}: "Autumnal Equinox Day",
	{2026, time.October, 12}:   "Sports Day",
	{2026, time.November, 3}:   "Culture Day",
	{2026, time.November, 23}:  "Labor Thanksgiving Day",
}

// HolidayName looks d up in the static holiday table.
func HolidayName(d Date) (string, bool) {
	name, ok := holidays[dayKey{d.Year(), d.Month(), d.Day()}]
	return name, ok
}

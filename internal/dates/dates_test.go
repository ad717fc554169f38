package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDate_Parse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		is := is.New(t)
		d, err := Parse("2025-01-05")
		is.NoErr(err)
		is.Equal(d, New(2025, time.January, 5))
		is.Equal(d.String(), "2025-01-05")
		is.Equal(d.Long(), "January 5, 2025")
		is.Equal(d.MonthKey(), "2025-01")
	})
	t.Run("invalid", func(t *testing.T) {
		is := is.New(t)
		_, err := Parse("05/01/2025")
		is.True(err != nil)
	})
}

func TestDate_Of(t *testing.T) {
	is := is.New(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2025-01-31 20:00 UTC is already February in Tokyo
	instant := time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC)
	is.Equal(Of(instant), New(2025, time.January, 31))
	is.Equal(Of(instant.In(tokyo)), New(2025, time.February, 1))
}

func TestDate_Weekday(t *testing.T) {
	is := is.New(t)
	d := New(2025, time.January, 4)
	is.Equal(d.Weekday(), time.Saturday)
	is.Equal(d.ShortWeekday(), "Sat")
	is.True(d.IsWeekend())
	is.True(!d.AddDays(2).IsWeekend())
}

func TestDate_JSON(t *testing.T) {
	is := is.New(t)
	type wrapper struct {
		Start Date  `json:"start"`
		End   *Date `json:"end"`
	}
	bs, err := json.Marshal(wrapper{Start: New(2025, time.March, 1)})
	is.NoErr(err)
	is.Equal(string(bs), `{"start":"2025-03-01","end":null}`)

	var out wrapper
	is.NoErr(json.Unmarshal([]byte(`{"start":"2025-03-02","end":"2025-03-04"}`), &out))
	is.Equal(out.Start, New(2025, time.March, 2))
	is.Equal(*out.End, New(2025, time.March, 4))
}

func TestDate_Scan(t *testing.T) {
	is := is.New(t)
	var d Date
	is.NoErr(d.Scan("2025-05-06"))
	is.Equal(d, New(2025, time.May, 6))
	is.NoErr(d.Scan([]byte("2025-05-07T00:00:00Z")))
	is.Equal(d, New(2025, time.May, 7))
	is.NoErr(d.Scan(nil))
	is.True(d.IsZero())

	v, err := New(2025, time.May, 6).Value()
	is.NoErr(err)
	is.Equal(v, "2025-05-06")
}

func TestRange_Contains(t *testing.T) {
	r := NewRange(New(2025, time.January, 5), New(2025, time.January, 10))

	t.Run("bounds are inclusive", func(t *testing.T) {
		is := is.New(t)
		is.True(r.Contains(r.Start))
		is.True(r.Contains(r.End))
		is.True(r.Contains(New(2025, time.January, 7)))
	})
	t.Run("outside", func(t *testing.T) {
		is := is.New(t)
		is.True(!r.Contains(New(2025, time.January, 4)))
		is.True(!r.Contains(New(2025, time.January, 11)))
	})
}

func TestRange_Overlaps(t *testing.T) {
	jan := Month(2025, time.January)
	cases := []struct {
		name string
		r    Range
		want bool
	}{
		{"inside", NewRange(New(2025, 1, 5), New(2025, 1, 10)), true},
		{"ends on first day", NewRange(New(2024, 12, 20), New(2025, 1, 1)), true},
		{"starts on last day", NewRange(New(2025, 1, 31), New(2025, 2, 3)), true},
		{"spans the month", NewRange(New(2024, 12, 1), New(2025, 2, 28)), true},
		{"before", NewRange(New(2024, 12, 1), New(2024, 12, 31)), false},
		{"after", NewRange(New(2025, 2, 1), New(2025, 2, 1)), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(c.r.Overlaps(jan), c.want)
			is.Equal(jan.Overlaps(c.r), c.want)
		})
	}
}

func TestRange_Clamp(t *testing.T) {
	is := is.New(t)
	jan := Month(2025, time.January)
	clamped, ok := NewRange(New(2024, 12, 28), New(2025, 1, 3)).Clamp(jan)
	is.True(ok)
	is.Equal(clamped, NewRange(New(2025, 1, 1), New(2025, 1, 3)))

	_, ok = Single(New(2025, 2, 1)).Clamp(jan)
	is.True(!ok)
}

func TestMonth(t *testing.T) {
	is := is.New(t)
	feb := Month(2024, time.February)
	is.Equal(feb.End, New(2024, time.February, 29))
	is.Equal(feb.Len(), 29)
	is.Equal(len(feb.Days()), 29)
	is.Equal(DaysInMonth(2025, time.February), 28)
	is.Equal(Month(2025, time.December).End, New(2025, time.December, 31))
}

func TestRange_Invalid(t *testing.T) {
	is := is.New(t)
	r := NewRange(New(2025, 1, 10), New(2025, 1, 5))
	is.True(!r.Valid())
	is.Equal(r.Len(), 0)
	is.True(!NewRange(Date{}, New(2025, 1, 5)).Valid())
}

func TestRange_LenCenturies(t *testing.T) {
	is := is.New(t)
	r := NewRange(MustParse("1500-01-01"), MustParse("2100-12-31"))
	is.Equal(r.Len(), 219_511)
	is.Equal(r.Start.DaysUntil(MustParse("2025-01-10")), 191_762)
	is.Equal(MustParse("2025-01-10").DaysUntil(r.Start), -191_762)
}

func TestClock(t *testing.T) {
	is := is.New(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	c := FixedClock(time.Date(2025, time.March, 31, 23, 30, 0, 0, tokyo))
	is.Equal(Today(c), New(2025, time.March, 31))
	is.True(IsToday(c, New(2025, time.March, 31)))
	is.True(!IsToday(c, New(2025, time.April, 1)))
	is.Equal(Location(c), tokyo)
}

func TestHolidayName(t *testing.T) {
	t.Run("known holiday", func(t *testing.T) {
		is := is.New(t)
		name, ok := HolidayName(New(2026, time.May, 5))
		is.True(ok)
		is.Equal(name, "Children's Day")
	})
	t.Run("keyed by exact year", func(t *testing.T) {
		is := is.New(t)
		_, ok := HolidayName(New(2026, time.September, 15))
		is.True(!ok)
		name, ok := HolidayName(New(2025, time.September, 15))
		is.True(ok)
		is.Equal(name, "Respect for the Aged Day")
	})
	t.Run("ordinary day", func(t *testing.T) {
		is := is.New(t)
		_, ok := HolidayName(New(2025, time.June, 10))
		is.True(!ok)
	})
}

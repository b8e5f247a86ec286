// Package holiday provides the Italian public holiday labels shown on the calendar.
package holiday

import (
	"time"

	"github.com/xolan/hourcal/internal/timeutil"
)

// fixed holds the holidays that fall on the same day every year, keyed by MM-DD
var fixed = map[string]string{
	"01-01": "Capodanno",
	"01-06": "Epifania",
	"04-25": "Liberaz.",
	"05-01": "Lavoro",
	"06-02": "Repubb.",
	"08-15": "Ferragosto",
	"11-01": "Ognissanti",
	"12-08": "Immacolata",
	"12-25": "Natale",
	"12-26": "S. Stefano",
	"12-31": "S. Silv.",
}

// Lookup returns the holiday label for a date key, or "" if the day is not a holiday.
func Lookup(key string) string {
	t, err := timeutil.ParseKey(key)
	if err != nil {
		return ""
	}
	if name, ok := fixed[key[5:]]; ok {
		return name
	}

	easter := Easter(t.Year())
	switch {
	case sameDay(t, easter):
		return "Pasqua"
	case sameDay(t, easter.AddDate(0, 0, 1)):
		return "Pasquetta"
	}
	return ""
}

// ForMonth returns the holidays of a month keyed by date key.
func ForMonth(m timeutil.Month) map[string]string {
	out := make(map[string]string)
	for d := 1; d <= m.Days(); d++ {
		key := m.Key(d)
		if name := Lookup(key); name != "" {
			out[key] = name
		}
	}
	return out
}

// Easter returns Easter Sunday of the given year (Gregorian calendar),
// using the anonymous Gregorian algorithm.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

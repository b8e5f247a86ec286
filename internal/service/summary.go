package service

import (
	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/timeutil"
)

// WeekTotal is the hours recorded in one ISO week of a month.
type WeekTotal struct {
	Week  int `json:"week"`
	Hours int `json:"hours"`
}

// MonthSummary aggregates a month grid.
type MonthSummary struct {
	Month        string      `json:"month"`
	TotalHours   int         `json:"total_hours"`
	WorkedDays   int         `json:"worked_days"`
	AverageHours float64     `json:"average_hours"`
	VacationDays int         `json:"vacation_days"`
	LeaveDays    int         `json:"leave_days"`
	WorkingDays  int         `json:"working_days"`
	Holidays     []DayView   `json:"holidays,omitempty"`
	Weeks        []WeekTotal `json:"weeks"`
}

// Summarize computes the totals shown next to a month grid.
// Working days are weekdays that are not public holidays.
func Summarize(v MonthView) MonthSummary {
	s := MonthSummary{Month: v.Month}

	weekIndex := map[int]int{}
	for _, d := range v.Days {
		if !d.Weekend && d.Holiday == "" {
			s.WorkingDays++
		}
		if d.Holiday != "" {
			s.Holidays = append(s.Holidays, d)
		}

		week := isoWeek(d.Date)
		i, ok := weekIndex[week]
		if !ok {
			i = len(s.Weeks)
			weekIndex[week] = i
			s.Weeks = append(s.Weeks, WeekTotal{Week: week})
		}

		if d.Entry == nil {
			continue
		}
		switch d.Entry.Kind {
		case entry.KindHours:
			s.TotalHours += d.Entry.Value
			s.WorkedDays++
			s.Weeks[i].Hours += d.Entry.Value
		case entry.KindVacation:
			s.VacationDays++
		case entry.KindLeave:
			s.LeaveDays++
		}
	}

	if s.WorkedDays > 0 {
		s.AverageHours = float64(s.TotalHours) / float64(s.WorkedDays)
	}
	return s
}

// Summary summarizes month m.
func (s *CalendarService) Summary(m timeutil.Month) MonthSummary {
	return Summarize(s.View(m))
}

func isoWeek(date string) int {
	t, err := timeutil.ParseKey(date)
	if err != nil {
		return 0
	}
	_, week := t.ISOWeek()
	return week
}

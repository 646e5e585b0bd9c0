// Package calendar lays tasks out on a date grid for the activity calendar.
package calendar

import (
	"sort"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first, last
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DatesInRange lists every day from start to end inclusive.
func DatesInRange(start, end time.Time) []time.Time {
	start = truncate(start)
	end = truncate(end)

	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// WeekGrid groups dates into Sunday-first weeks of seven cells. Cells before
// the first date and after the last are zero times.
func WeekGrid(dates []time.Time) [][]time.Time {
	if len(dates) == 0 {
		return nil
	}

	var weeks [][]time.Time
	week := make([]time.Time, int(dates[0].Weekday()), 7)

	for _, d := range dates {
		week = append(week, d)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]time.Time, 0, 7)
		}
	}

	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, time.Time{})
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// TasksForDay returns the tasks starting on day, ordered by start time.
func TasksForDay(tasks []domain.Task, day time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if SameDay(t.StartDate, day) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// DayTasks is one selected date and its tasks.
type DayTasks struct {
	Date  time.Time
	Tasks []domain.Task
}

// GroupBySelectedDates returns the tasks of every selected date, dates in
// ascending order. Duplicate dates are collapsed.
func GroupBySelectedDates(tasks []domain.Task, selected []time.Time) []DayTasks {
	days := make([]time.Time, 0, len(selected))
	for _, d := range selected {
		d = truncate(d)
		dup := false
		for _, seen := range days {
			if SameDay(seen, d) {
				dup = true
				break
			}
		}
		if !dup {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DayTasks, 0, len(days))
	for _, d := range days {
		out = append(out, DayTasks{Date: d, Tasks: TasksForDay(tasks, d)})
	}
	return out
}

// BusyDates returns the dates in range that have at least one task.
func BusyDates(tasks []domain.Task, dates []time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		if len(TasksForDay(tasks, d)) > 0 {
			out = append(out, d)
		}
	}
	return out
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

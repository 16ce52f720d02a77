package services

import (
	"time"

	"pennywise/backend/models"
)

// chartDays caps the dashboard bar chart.
const chartDays = 7

// DateRange bounds a dashboard query. A nil range or nil From matches
// everything; both bounds are inclusive of their whole calendar day.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil || r.From == nil {
		return true
	}
	if t.Before(startOfDay(*r.From)) {
		return false
	}
	if r.To == nil {
		return true
	}
	return !t.After(endOfDay(*r.To))
}

// FilterByRange returns the expenses whose date falls inside r, preserving
// input order.
func FilterByRange(expenses []models.Expense, r *DateRange) []models.Expense {
	filtered := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if r.Contains(e.Date) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// DailyPoint is one bar of the dashboard chart.
type DailyPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Overview is the derived dashboard summary.
type Overview struct {
	TotalSpent float64          `json:"totalSpent"`
	Daily      []DailyPoint     `json:"dailySeries"`
	Filtered   []models.Expense `json:"filteredExpenses"`
}

// BuildOverview filters expenses by r and derives the total plus the per-day
// chart series. Days are labeled "Jan 2" and appear in the order first
// encountered while scanning the filtered list; only the last seven entries
// of that sequence are kept for the chart.
func BuildOverview(expenses []models.Expense, r *DateRange) Overview {
	filtered := FilterByRange(expenses, r)

	var total float64
	var daily []DailyPoint
	index := make(map[string]int)
	for _, e := range filtered {
		total += e.Amount
		label := e.Date.Format("Jan 2")
		if i, ok := index[label]; ok {
			daily[i].Amount += e.Amount
		} else {
			index[label] = len(daily)
			daily = append(daily, DailyPoint{Date: label, Amount: e.Amount})
		}
	}
	if len(daily) > chartDays {
		daily = daily[len(daily)-chartDays:]
	}
	if daily == nil {
		daily = []DailyPoint{}
	}

	return Overview{TotalSpent: total, Daily: daily, Filtered: filtered}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

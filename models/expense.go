package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Expense is a single expense record as surfaced to the dashboard. Missing or
// malformed fields are resolved at read time by Normalize, never rejected.
type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	Note        string    `json:"note,omitempty"`
	UserID      string    `json:"userId"`
}

// ExpenseInput is the transient form payload used to create an expense. The
// amount is kept as text so garbage can be rejected before anything reaches
// the backend.
type ExpenseInput struct {
	Description string     `json:"description"`
	Amount      FormAmount `json:"amount"`
	Date        time.Time  `json:"date"`
	Note        string     `json:"note"`
}

// FormAmount accepts either a JSON number or a quoted string.
type FormAmount string

func (a *FormAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(b, &unquoted); err != nil {
			return err
		}
		s = unquoted
	}
	*a = FormAmount(s)
	return nil
}

// Validate checks the write-time constraints and returns the parsed amount
// and trimmed description on success.
func (in ExpenseInput) Validate() (float64, string, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(string(in.Amount)), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, "", NewInvalidInput("Please enter a valid amount")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return 0, "", NewInvalidInput("Please enter a description")
	}
	return amount, desc, nil
}

// RawRecord is one undecoded collection entry as delivered by a backend
// snapshot. Timestamps are epoch milliseconds.
type RawRecord map[string]interface{}

// Normalize coerces a raw entry into an Expense. The date is the first valid
// numeric value of date then createdAt, falling back to now; the amount is
// numeric-cast defaulting to 0; note and userId default to empty. Negative
// amounts pass through unchanged, validation only happens on write.
func Normalize(id string, raw RawRecord, now time.Time) Expense {
	date, ok := numericValue(raw["date"])
	if !ok {
		if created, ok := numericValue(raw["createdAt"]); ok {
			date = created
		} else {
			date = float64(now.UnixMilli())
		}
	}
	created, ok := numericValue(raw["createdAt"])
	if !ok {
		created = date
	}
	return Expense{
		ID:          id,
		Description: stringValue(raw["description"]),
		Amount:      castAmount(raw["amount"]),
		Date:        time.UnixMilli(int64(date)),
		CreatedAt:   time.UnixMilli(int64(created)),
		Note:        stringValue(raw["note"]),
		UserID:      stringValue(raw["userId"]),
	}
}

// numericValue reports values that are actually numbers; numeric strings do
// not count here, so a string date falls through to createdAt.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// castAmount is looser than numericValue: numeric strings count, everything
// else becomes 0.
func castAmount(v interface{}) float64 {
	if f, ok := numericValue(v); ok {
		return f
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

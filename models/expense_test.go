package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   ExpenseInput
		wantErr bool
		amount  float64
		desc    string
	}{
		{
			name:   "valid input",
			input:  ExpenseInput{Description: "Coffee", Amount: "4.50"},
			amount: 4.5,
			desc:   "Coffee",
		},
		{
			name:   "trims description",
			input:  ExpenseInput{Description: "  Lunch  ", Amount: "12"},
			amount: 12,
			desc:   "Lunch",
		},
		{
			name:   "zero amount is allowed",
			input:  ExpenseInput{Description: "Freebie", Amount: "0"},
			amount: 0,
			desc:   "Freebie",
		},
		{
			name:    "non-numeric amount",
			input:   ExpenseInput{Description: "Coffee", Amount: "abc"},
			wantErr: true,
		},
		{
			name:    "negative amount",
			input:   ExpenseInput{Description: "Coffee", Amount: "-1"},
			wantErr: true,
		},
		{
			name:    "NaN amount",
			input:   ExpenseInput{Description: "Coffee", Amount: "NaN"},
			wantErr: true,
		},
		{
			name:    "whitespace description",
			input:   ExpenseInput{Description: "   ", Amount: "5"},
			wantErr: true,
		},
		{
			name:    "empty amount",
			input:   ExpenseInput{Description: "Coffee", Amount: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, desc, err := tt.input.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidInput, TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestFormAmountAcceptsNumberAndString(t *testing.T) {
	var in ExpenseInput
	require.NoError(t, json.Unmarshal([]byte(`{"description":"a","amount":12.5}`), &in))
	assert.Equal(t, FormAmount("12.5"), in.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"description":"a","amount":"12.5"}`), &in))
	assert.Equal(t, FormAmount("12.5"), in.Amount)
}

func TestNormalizeDateFallback(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	// date present and numeric wins
	e := Normalize("a", RawRecord{"date": float64(1000), "createdAt": float64(2000)}, now)
	assert.Equal(t, time.UnixMilli(1000), e.Date)

	// non-numeric date falls back to createdAt
	e = Normalize("a", RawRecord{"date": "yesterday", "createdAt": float64(2000)}, now)
	assert.Equal(t, time.UnixMilli(2000), e.Date)

	// both missing fall back to now
	e = Normalize("a", RawRecord{}, now)
	assert.Equal(t, now.UnixMilli(), e.Date.UnixMilli())
	assert.Equal(t, e.Date, e.CreatedAt)
}

func TestNormalizeAmountCoercion(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 10.0, Normalize("a", RawRecord{"amount": float64(10)}, now).Amount)
	assert.Equal(t, 10.0, Normalize("a", RawRecord{"amount": int64(10)}, now).Amount)
	assert.Equal(t, 10.5, Normalize("a", RawRecord{"amount": "10.5"}, now).Amount)
	assert.Equal(t, 0.0, Normalize("a", RawRecord{"amount": "garbage"}, now).Amount)
	assert.Equal(t, 0.0, Normalize("a", RawRecord{}, now).Amount)

	// negative amounts pass through unchanged on read
	assert.Equal(t, -5.0, Normalize("a", RawRecord{"amount": float64(-5)}, now).Amount)
}

func TestNormalizeDefaults(t *testing.T) {
	e := Normalize("id-1", RawRecord{"amount": float64(3)}, time.Now())
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, "", e.Description)
	assert.Equal(t, "", e.Note)
	assert.Equal(t, "", e.UserID)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	app := Classify(errPermission{})
	assert.Equal(t, ErrPermissionDenied, app.Type)
	assert.Equal(t, "You don't have permission to access this data", app.Message)

	app = Classify(errString("http error status: 503; reason: unavailable"))
	assert.Equal(t, ErrServiceUnavailable, app.Type)

	app = Classify(errString("something odd happened"))
	assert.Equal(t, ErrUnknown, app.Type)
	assert.Equal(t, "Database error: something odd happened", app.Message)

	// classified errors pass through untouched
	orig := NewInvalidInput("bad amount")
	assert.Same(t, orig, Classify(orig))
}

type errString string

func (e errString) Error() string { return string(e) }

type errPermission struct{}

func (errPermission) Error() string { return "Permission denied by firebase rules" }

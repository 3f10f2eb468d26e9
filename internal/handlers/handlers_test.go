package handlers

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barberflow/internal/models"
)

func TestValidSchedule(t *testing.T) {
	day := func(start, end string) models.WorkingHours {
		return models.WorkingHours{"monday": {{Start: start, End: end}}}
	}

	tests := []struct {
		name    string
		wh      models.WorkingHours
		daysOff []string
		want    bool
	}{
		{"empty", nil, nil, true},
		{"split day", models.WorkingHours{"friday": {{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "19:00"}}}, []string{"2030-12-25"}, true},
		{"unknown weekday", models.WorkingHours{"segunda": {{Start: "09:00", End: "12:00"}}}, nil, false},
		{"end before start", day("18:00", "09:00"), nil, false},
		{"bad clock", day("9h", "18:00"), nil, false},
		{"bad day off", day("09:00", "18:00"), []string{"25/12/2030"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validSchedule(tt.wh, tt.daysOff); got != tt.want {
				t.Fatalf("validSchedule = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := summarize([]models.LedgerEntry{
		{Kind: models.LedgerIncome, Amount: decimal.RequireFromString("10.10")},
		{Kind: models.LedgerIncome, Amount: decimal.RequireFromString("0.20")},
		{Kind: models.LedgerExpense, Amount: decimal.RequireFromString("4.30")},
	})

	if !s.Income.Equal(decimal.RequireFromString("10.30")) ||
		!s.Expense.Equal(decimal.RequireFromString("4.30")) ||
		!s.Balance.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("summary = %+v", s)
	}

	empty := summarize(nil)
	if !empty.Balance.IsZero() {
		t.Fatalf("empty balance = %s", empty.Balance)
	}
}

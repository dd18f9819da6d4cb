package services

import (
	"testing"
	"time"

	"rentledger/internal/core"
)

func TestWeeklyChecker(t *testing.T) {
	checker := WeeklyChecker{}
	start := core.NewDate(2024, 1, 1)

	tests := []struct {
		name       string
		lastBilled core.Date
		now        time.Time
		want       bool
	}{
		{"never billed", core.Date{}, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), true},
		{"billed 7 days ago", core.NewDate(2024, 1, 1), time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), true},
		{"billed 3 days ago", core.NewDate(2024, 1, 5), time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), false},
		{"billed 14 days ago", core.NewDate(2024, 1, 1), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastBilled, tt.now, start); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name       string
		lastBilled core.Date
		now        time.Time
		startDate  core.Date
		want       bool
	}{
		{
			name:      "never billed",
			now:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			startDate: core.NewDate(2024, 1, 15),
			want:      true,
		},
		{
			name:       "already billed this month",
			lastBilled: core.NewDate(2024, 2, 15),
			now:        time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2024, 1, 15),
			want:       false,
		},
		{
			name:       "new month, target day reached",
			lastBilled: core.NewDate(2024, 1, 15),
			now:        time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2024, 1, 15),
			want:       true,
		},
		{
			name:       "new month, target day not reached",
			lastBilled: core.NewDate(2024, 1, 15),
			now:        time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2024, 1, 15),
			want:       false,
		},
		{
			name:       "start on 31st clamps to end of February",
			lastBilled: core.NewDate(2024, 1, 31),
			now:        time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2024, 1, 31),
			want:       true,
		},
		{
			name:       "start on 31st, Feb 28 of leap year not yet due",
			lastBilled: core.NewDate(2024, 1, 31),
			now:        time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2024, 1, 31),
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastBilled, tt.now, tt.startDate); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker(t *testing.T) {
	checker := YearlyChecker{}

	tests := []struct {
		name       string
		lastBilled core.Date
		now        time.Time
		startDate  core.Date
		want       bool
	}{
		{
			name:      "never billed",
			now:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			startDate: core.NewDate(2023, 6, 1),
			want:      true,
		},
		{
			name:       "already billed this year",
			lastBilled: core.NewDate(2024, 6, 1),
			now:        time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2023, 6, 1),
			want:       false,
		},
		{
			name:       "new year, before target month",
			lastBilled: core.NewDate(2023, 6, 1),
			now:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2023, 6, 1),
			want:       false,
		},
		{
			name:       "new year, target day reached",
			lastBilled: core.NewDate(2023, 6, 1),
			now:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2023, 6, 1),
			want:       true,
		},
		{
			name:       "new year, past target month",
			lastBilled: core.NewDate(2023, 6, 1),
			now:        time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
			startDate:  core.NewDate(2023, 6, 1),
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastBilled, tt.now, tt.startDate); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, f := range []core.Frequency{core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetDuenessChecker(f); err != nil {
			t.Errorf("GetDuenessChecker(%s) error = %v", f, err)
		}
	}
	if _, err := GetDuenessChecker("fortnightly"); err == nil {
		t.Error("GetDuenessChecker should reject unknown frequencies")
	}
}

// Package services provides business logic and orchestration on top of the
// store.
//
// Dueness checking uses the strategy pattern: each billing frequency has its
// own checker deciding whether a tenancy owes a new rent obligation.
package services

import (
	"fmt"
	"time"

	"rentledger/internal/core"
)

// DuenessChecker decides whether a tenancy should be billed again given when
// it was last billed.
type DuenessChecker interface {
	IsDue(lastBilled core.Date, now time.Time, startDate core.Date) bool
}

// WeeklyChecker bills every 7 days.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastBilled core.Date, now time.Time, _ core.Date) bool {
	if !lastBilled.IsSet() {
		return true
	}
	daysSince := now.Sub(lastBilled.Time).Hours() / 24
	return daysSince >= 7
}

// MonthlyChecker bills once per calendar month on the start date's day,
// clamped to the last day of shorter months.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastBilled core.Date, now time.Time, startDate core.Date) bool {
	if !lastBilled.IsSet() {
		return true
	}

	if lastBilled.Year() == now.Year() && lastBilled.Month() == now.Month() {
		return false
	}

	targetDay := clampDay(startDate.Day(), now.Year(), now.Month())
	return now.Day() >= targetDay
}

// YearlyChecker bills once per year on the start date's month and day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastBilled core.Date, now time.Time, startDate core.Date) bool {
	if !lastBilled.IsSet() {
		return true
	}

	if lastBilled.Year() == now.Year() {
		return false
	}

	if int(now.Month()) < int(startDate.Month()) {
		return false
	}
	if now.Month() == startDate.Month() {
		return now.Day() >= clampDay(startDate.Day(), now.Year(), now.Month())
	}
	return true
}

// clampDay maps a target day onto a month that may be shorter, so a tenancy
// starting on the 31st bills on Feb 28th.
func clampDay(day, year int, month time.Month) int {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a billing frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown billing frequency: %s", frequency)
	}
	return checker, nil
}

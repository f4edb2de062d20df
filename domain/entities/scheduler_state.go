package entities

import "time"

// SchedulerState is the persisted record of schedule progress
type SchedulerState struct {
	LastSettledAt    *time.Time  `db:"last_settled_at"`
	LastRoundID      *int64      `db:"last_round_id"`
	OutcomeMode      OutcomeMode `db:"outcome_mode"` // Steers settlements rolled without explicit dice
	OutcomeModeSetBy *int64      `db:"outcome_mode_set_by"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// CurrentOutcomeMode returns the stored mode, random when no state exists yet
func (s *SchedulerState) CurrentOutcomeMode() OutcomeMode {
	if s == nil || s.OutcomeMode == "" {
		return OutcomeModeRandom
	}
	return s.OutcomeMode
}

// IsStalled reports whether the last settlement is older than interval plus grace.
// Before the first settlement there is nothing to compare against, so it is never stalled.
func (s *SchedulerState) IsStalled(now time.Time, interval, grace time.Duration) bool {
	if s == nil || s.LastSettledAt == nil {
		return false
	}
	return now.Sub(*s.LastSettledAt) > interval+grace
}

// ScheduleHealth is a point-in-time view of the scheduler
type ScheduleHealth struct {
	LastSettledAt *time.Time
	LastRoundID   *int64
	Stalled       bool
	Overdue       time.Duration // How far past the allowed window the last settlement is
}

package models

import "time"

// UnitProgress records the completion of one unit of an offering by a
// learner. Rows are insert-only and never removed; a later license expiry
// gates future completions, never recorded ones.
type UnitProgress struct {
	LearnerID   int64     `json:"learnerId" db:"learner_id"`
	OfferingID  int64     `json:"offeringId" db:"offering_id"`
	UnitIndex   int       `json:"unitIndex" db:"unit_index"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
}

// OfferingCompletion is the cached per-(learner, offering) completion state,
// maintained at the moment the triggering unit completion commits so that
// downstream gating stays O(1).
type OfferingCompletion struct {
	LearnerID      int64      `json:"learnerId" db:"learner_id"`
	OfferingID     int64      `json:"offeringId" db:"offering_id"`
	CompletedUnits int        `json:"completedUnits" db:"completed_units"`
	Completed      bool       `json:"completed" db:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

package dto

import "time"

// CompleteUnitRequest marks one unit of an offering as completed
type CompleteUnitRequest struct {
	OfferingID int64 `json:"offeringId" binding:"required,min=1"`
	UnitIndex  *int  `json:"unitIndex" binding:"required,min=0"`
}

// UnitCompletionResponse reports the progress state after a completion
type UnitCompletionResponse struct {
	OfferingID        int64      `json:"offeringId"`
	UnitIndex         int        `json:"unitIndex"`
	CompletedUnits    int        `json:"completedUnits"`
	UnitCount         int        `json:"unitCount"`
	OfferingCompleted bool       `json:"offeringCompleted"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// OfferingProgressResponse is the ordered per-unit completion sequence
type OfferingProgressResponse struct {
	OfferingID int64  `json:"offeringId"`
	Units      []bool `json:"units"`
	Completed  bool   `json:"completed"`
}

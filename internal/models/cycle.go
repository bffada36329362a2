package models

import "time"

// CycleStats describes one harvest/submit cycle.
type CycleStats struct {
	Bounds         Bounds
	TargetsFetched int
	Eligible       int
	Published      int
	Submitted      int
	StartedAt      time.Time
	Duration       time.Duration
}

// Succeeded reports whether anything was submitted during the cycle.
func (s CycleStats) Succeeded() bool {
	return s.Submitted > 0
}

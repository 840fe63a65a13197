package model

import "time"

// AttemptEvent is an attempt write submitted by the attempt store's clients.
// Fields mirror the OpenAPI schema for POST /attempts.
type AttemptEvent struct {
	EventID     string            // unique id for idempotency
	CandidateID string            // candidate the attempt belongs to
	Attempt     AssessmentAttempt // full attempt state after the write
	TS          time.Time         // submission timestamp
}

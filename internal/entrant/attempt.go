package entrant

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attempt is one timed run on the line-following track.
type Attempt struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	RegistrationID uuid.UUID     `db:"registration_id" json:"registration_id"`
	Duration       time.Duration `db:"duration_ns" json:"duration"`
	RecordedAt     time.Time     `db:"recorded_at" json:"recorded_at"`
}

func NewAttempt(registrationID uuid.UUID, d time.Duration, at time.Time) (Attempt, error) {
	if d < 0 {
		return Attempt{}, fmt.Errorf("%w: negative duration %s", ErrInvalidAttempt, d)
	}
	return Attempt{
		ID:             uuid.New(),
		RegistrationID: registrationID,
		Duration:       d,
		RecordedAt:     at.UTC(),
	}, nil
}

func (a Attempt) Valid() bool {
	return a.Duration >= 0
}

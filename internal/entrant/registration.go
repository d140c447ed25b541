package entrant

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus  = errors.New("invalid registration status")
	ErrInvalidAttempt = errors.New("invalid attempt")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Registration links an entrant to a competition. Seq is the creation order
// inside the competition and is the last resort tie-break for rankings.
type Registration struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Seq           int64     `db:"seq" json:"seq"`
	CompetitionID uuid.UUID `db:"competition_id" json:"competition_id"`
	EntrantID     uuid.UUID `db:"entrant_id" json:"entrant_id"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	EntrantName string  `db:"entrant_name" json:"entrant_name"`
	WeightClass float64 `db:"weight_class" json:"weight_class"`

	Attempts []Attempt `db:"-" json:"attempts,omitempty"`
}

func (r Registration) Approved() bool {
	return r.Status == StatusApproved
}

// BestAttempt returns the fastest valid attempt. Among attempts with the same
// duration the earliest recorded one wins.
func (r Registration) BestAttempt() (Attempt, bool) {
	var best Attempt
	found := false
	for _, a := range r.Attempts {
		if !a.Valid() {
			continue
		}
		if !found || a.Duration < best.Duration ||
			(a.Duration == best.Duration && a.RecordedAt.Before(best.RecordedAt)) {
			best = a
			found = true
		}
	}
	return best, found
}

// Transition validates an organizer decision. Only pending registrations can
// be decided, and a decision can only be approved or rejected.
func (r Registration) Transition(to Status) error {
	if to != StatusApproved && to != StatusRejected {
		return fmt.Errorf("%w: cannot move to %q", ErrInvalidStatus, to)
	}
	if r.Status != StatusPending && r.Status != to {
		return fmt.Errorf("%w: registration already %s", ErrInvalidStatus, r.Status)
	}
	return nil
}

// FilterApproved keeps the approved registrations in their original order.
func FilterApproved(regs []Registration) []Registration {
	approved := make([]Registration, 0, len(regs))
	for _, r := range regs {
		if r.Approved() {
			approved = append(approved, r)
		}
	}
	return approved
}

package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
)

// DeclareWinner records the judge's decision for a match and moves the
// winner into the next round. Every check runs before anything is written,
// so a failed call leaves the bracket untouched.
//
// A completed match may be re-declared while its next match is still
// waiting to be played. Once that match has started the result is locked.
func (b *Bracket) DeclareWinner(ref MatchRef, winner uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.lookup(ref)
	if err != nil {
		return err
	}
	if !m.Ready() {
		return fmt.Errorf("%w: %s", ErrIncompleteMatch, ref)
	}

	slot := m.slotOf(winner)
	if slot == 0 {
		return fmt.Errorf("%w: %s in %s", ErrInvalidWinner, winner, ref)
	}
	if m.IsBye {
		return fmt.Errorf("%w: %s is a bye", ErrResultLocked, ref)
	}

	if m.Status == MatchCompleted {
		if m.Next != nil {
			next := b.rounds[m.Next.Round].Matches[m.Next.Index]
			if next.Status == MatchInProgress || next.Status == MatchCompleted {
				return fmt.Errorf("%w: %s already played %s", ErrResultLocked, next.Ref, ref)
			}
		}
		if m.IsWinner(slot) {
			return nil
		}
	}

	m.Status = MatchCompleted
	m.WinnerSlot = &slot
	b.advance(m, winner)
	return nil
}

// StartMatch marks a scheduled match as being fought.
func (b *Bracket) StartMatch(ref MatchRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.lookup(ref)
	if err != nil {
		return err
	}

	switch m.Status {
	case MatchPending:
		return fmt.Errorf("%w: %s", ErrIncompleteMatch, ref)
	case MatchCompleted:
		return fmt.Errorf("%w: %s already completed", ErrResultLocked, ref)
	case MatchScheduled:
		m.Status = MatchInProgress
	}
	return nil
}

// Champion is the winner of the final, or the sole seed of a one entrant
// bracket.
func (b *Bracket) Champion() (entrant.Registration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.rounds) == 0 {
		if len(b.Seeds) == 1 {
			return b.Seeds[0], nil
		}
		return entrant.Registration{}, ErrNotYetDetermined
	}

	final := b.rounds[len(b.rounds)-1].Matches[0]
	id, ok := final.Winner()
	if !ok {
		return entrant.Registration{}, ErrNotYetDetermined
	}
	reg, ok := b.Seed(id)
	if !ok {
		return entrant.Registration{}, fmt.Errorf("%w: champion %s is not seeded", ErrInvalidInput, id)
	}
	return reg, nil
}

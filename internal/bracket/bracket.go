package bracket

import (
	"fmt"
	"sync"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
)

type Round struct {
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// Bracket is a single elimination tree stored as flat rounds. Its shape is
// fixed once built; only slot occupants, statuses and winners change, and
// every change goes through mu.
type Bracket struct {
	CompetitionID uuid.UUID
	Seeds         []entrant.Registration

	mu     sync.Mutex
	rounds []Round
}

func (b *Bracket) RoundCount() int {
	return len(b.rounds)
}

// MatchCount counts all matches including byes.
func (b *Bracket) MatchCount() int {
	total := 0
	for _, r := range b.rounds {
		total += len(r.Matches)
	}
	return total
}

// Snapshot returns a deep copy of the rounds that is safe to hand to readers.
func (b *Bracket) Snapshot() []Round {
	b.mu.Lock()
	defer b.mu.Unlock()

	rounds := make([]Round, len(b.rounds))
	for i, r := range b.rounds {
		matches := make([]Match, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = m.clone()
		}
		rounds[i] = Round{Number: r.Number, Matches: matches}
	}
	return rounds
}

// Matches flattens the bracket in round then position order.
func (b *Bracket) Matches() []Match {
	var all []Match
	for _, r := range b.Snapshot() {
		all = append(all, r.Matches...)
	}
	return all
}

func (b *Bracket) Match(ref MatchRef) (Match, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.lookup(ref)
	if err != nil {
		return Match{}, err
	}
	return m.clone(), nil
}

// NextPlayable returns the first match, in bracket order, that is waiting
// for a judge decision.
func (b *Bracket) NextPlayable() (MatchRef, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.rounds {
		for _, m := range r.Matches {
			if m.Status == MatchScheduled || m.Status == MatchInProgress {
				return m.Ref, true
			}
		}
	}
	return MatchRef{}, false
}

func (b *Bracket) Seed(id uuid.UUID) (entrant.Registration, bool) {
	for _, s := range b.Seeds {
		if s.ID == id {
			return s, true
		}
	}
	return entrant.Registration{}, false
}

func (b *Bracket) lookup(ref MatchRef) (*Match, error) {
	if ref.Round < 0 || ref.Round >= len(b.rounds) {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, ref)
	}
	matches := b.rounds[ref.Round].Matches
	if ref.Index < 0 || ref.Index >= len(matches) {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, ref)
	}
	return &matches[ref.Index], nil
}

// Restore rebuilds a persisted bracket. The shape is regenerated from the
// seeds and the stored matches only contribute occupants and results, so a
// corrupted row cannot change pairings.
func Restore(competitionID uuid.UUID, seeds []entrant.Registration, stored []Match) (*Bracket, error) {
	b, err := Build(competitionID, seeds)
	if err != nil {
		return nil, err
	}
	if len(stored) != b.MatchCount() {
		return nil, fmt.Errorf("%w: stored bracket has %d matches, want %d", ErrInvalidInput, len(stored), b.MatchCount())
	}

	for _, sm := range stored {
		m, err := b.lookup(sm.Ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if m.IsBye != sm.IsBye {
			return nil, fmt.Errorf("%w: bye mismatch at %s", ErrInvalidInput, sm.Ref)
		}
		for n := 1; n <= 2; n++ {
			built, saved := m.slot(n), sm.slot(n)
			if built.Kind == SlotEntrant && built.RegistrationID != saved.RegistrationID {
				return nil, fmt.Errorf("%w: seeding mismatch at %s", ErrInvalidInput, sm.Ref)
			}
			if built.Kind == SlotPlaceholder {
				built.RegistrationID = saved.RegistrationID
			}
		}
		if sm.WinnerSlot != nil && (*sm.WinnerSlot < 1 || *sm.WinnerSlot > 2) {
			return nil, fmt.Errorf("%w: winner slot %d at %s", ErrInvalidInput, *sm.WinnerSlot, sm.Ref)
		}
		m.Status = sm.Status
		m.WinnerSlot = nil
		if sm.WinnerSlot != nil {
			w := *sm.WinnerSlot
			m.WinnerSlot = &w
		}
	}
	return b, nil
}

package bracket

import (
	"fmt"
	"math/bits"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/utils"
	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 1 {
		return count
	}
	return 1 << bits.Len(uint(count-1))
}

// Build seats the approved registrations into a single elimination bracket.
//
// The first size-N seeds in input order get byes, so earlier registrations
// are rewarded. Round 1 lists the bye matches first, then pairs the remaining
// seeds in order (k vs k+1). Bye matches complete immediately and push their
// entrant into round 2; nothing else is resolved automatically.
//
// The caller filters by status. Build only rejects what it cannot seat: an
// empty list, a registration that is not approved, or a repeated ID.
func Build(competitionID uuid.UUID, approved []entrant.Registration) (*Bracket, error) {
	if len(approved) == 0 {
		return nil, fmt.Errorf("%w: no approved entrants", ErrInvalidInput)
	}

	seen := make(map[uuid.UUID]bool, len(approved))
	for _, r := range approved {
		if r.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: registration without id", ErrInvalidInput)
		}
		if !r.Approved() {
			return nil, fmt.Errorf("%w: registration %s is %s", ErrInvalidInput, r.ID, r.Status)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: registration %s seeded twice", ErrInvalidInput, r.ID)
		}
		seen[r.ID] = true
	}

	seeds := make([]entrant.Registration, len(approved))
	copy(seeds, approved)

	b := &Bracket{CompetitionID: competitionID, Seeds: seeds}
	if len(seeds) == 1 {
		return b, nil
	}

	size := calcBracketSize(len(seeds))
	byes := size - len(seeds)
	totalRounds := bits.Len(uint(size)) - 1

	b.rounds = make([]Round, totalRounds)
	for r := 0; r < totalRounds; r++ {
		matches := make([]Match, size>>(r+1))
		for i := range matches {
			m := Match{
				Ref:    MatchRef{Round: r, Index: i},
				Status: MatchPending,
			}
			if r < totalRounds-1 {
				m.Next = &MatchRef{Round: r + 1, Index: i / 2}
				m.NextSlot = i%2 + 1
			}
			if r > 0 {
				m.Slot1 = Slot{Kind: SlotPlaceholder, Source: &MatchRef{Round: r - 1, Index: 2 * i}}
				m.Slot2 = Slot{Kind: SlotPlaceholder, Source: &MatchRef{Round: r - 1, Index: 2*i + 1}}
			}
			matches[i] = m
		}
		b.rounds[r] = Round{Number: r + 1, Matches: matches}
	}

	first := b.rounds[0].Matches
	for i := 0; i < byes; i++ {
		m := &first[i]
		m.Slot1 = Slot{Kind: SlotEntrant, RegistrationID: seeds[i].ID}
		m.Slot2 = Slot{Kind: SlotBye}
		m.IsBye = true
		m.Status = MatchCompleted
		m.WinnerSlot = utils.Ptr(1)
	}

	rest := seeds[byes:]
	for j := 0; j < len(rest); j += 2 {
		m := &first[byes+j/2]
		m.Slot1 = Slot{Kind: SlotEntrant, RegistrationID: rest[j].ID}
		m.Slot2 = Slot{Kind: SlotEntrant, RegistrationID: rest[j+1].ID}
		m.Status = MatchScheduled
	}

	for i := 0; i < byes; i++ {
		b.advance(&first[i], seeds[i].ID)
	}

	return b, nil
}

// advance writes the winner into the next round. The next match becomes
// playable once both of its slots are known.
func (b *Bracket) advance(m *Match, winner uuid.UUID) {
	if m.Next == nil {
		return
	}
	next := &b.rounds[m.Next.Round].Matches[m.Next.Index]
	next.slot(m.NextSlot).RegistrationID = winner
	if next.Status == MatchPending && next.Ready() {
		next.Status = MatchScheduled
	}
}

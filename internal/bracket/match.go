package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	// Waiting on the winner of an earlier match.
	MatchPending    MatchStatus = "pending"
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

type SlotKind string

const (
	SlotEntrant     SlotKind = "entrant"
	SlotPlaceholder SlotKind = "placeholder"
	SlotBye         SlotKind = "bye"
)

// MatchRef addresses a match by zero-based round and position in the round.
type MatchRef struct {
	Round int `json:"round"`
	Index int `json:"index"`
}

func (r MatchRef) String() string {
	return fmt.Sprintf("R%dM%d", r.Round+1, r.Index+1)
}

// Slot is one side of a match. A placeholder slot keeps its Source and gets
// a RegistrationID once the source match has a winner.
type Slot struct {
	Kind           SlotKind  `json:"kind"`
	RegistrationID uuid.UUID `json:"registration_id"`
	Source         *MatchRef `json:"source,omitempty"`
}

func (s Slot) Filled() bool {
	return s.RegistrationID != uuid.Nil
}

func (s Slot) clone() Slot {
	if s.Source != nil {
		src := *s.Source
		s.Source = &src
	}
	return s
}

type Match struct {
	Ref    MatchRef    `json:"ref"`
	Slot1  Slot        `json:"slot_1"`
	Slot2  Slot        `json:"slot_2"`
	Status MatchStatus `json:"status"`

	// Where the winner goes, nil for the final
	Next     *MatchRef `json:"next,omitempty"`
	NextSlot int       `json:"next_slot,omitempty"`

	WinnerSlot *int `json:"winner_slot,omitempty"`
	IsBye      bool `json:"is_bye"`
}

func (m *Match) slot(n int) *Slot {
	if n == 1 {
		return &m.Slot1
	}
	return &m.Slot2
}

// slotOf returns 1 or 2 for the slot holding id, 0 when id is not in the match.
func (m *Match) slotOf(id uuid.UUID) int {
	if id == uuid.Nil {
		return 0
	}
	switch id {
	case m.Slot1.RegistrationID:
		return 1
	case m.Slot2.RegistrationID:
		return 2
	}
	return 0
}

// Ready reports whether both sides are known. A bye only needs its entrant.
func (m Match) Ready() bool {
	if m.IsBye {
		return m.Slot1.Filled()
	}
	return m.Slot1.Filled() && m.Slot2.Filled()
}

func (m Match) Winner() (uuid.UUID, bool) {
	if m.Status != MatchCompleted || m.WinnerSlot == nil {
		return uuid.Nil, false
	}
	return m.slot(*m.WinnerSlot).RegistrationID, true
}

func (m Match) IsWinner(slot int) bool {
	return m.Status == MatchCompleted && m.WinnerSlot != nil && *m.WinnerSlot == slot
}

func (m Match) clone() Match {
	m.Slot1 = m.Slot1.clone()
	m.Slot2 = m.Slot2.clone()
	if m.Next != nil {
		next := *m.Next
		m.Next = &next
	}
	if m.WinnerSlot != nil {
		w := *m.WinnerSlot
		m.WinnerSlot = &w
	}
	return m
}

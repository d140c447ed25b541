package ranking

import (
	"sort"
	"strings"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
)

type ClassificationRow struct {
	Rank         int                  `json:"rank"`
	Registration entrant.Registration `json:"registration"`
	Best         time.Duration        `json:"best"`
	AchievedAt   time.Time            `json:"achieved_at"`
}

// Classification is the ranked table of a timed competition. Registrations
// without a valid attempt are listed apart, in registration order.
type Classification struct {
	Rows     []ClassificationRow    `json:"rows"`
	Unranked []entrant.Registration `json:"unranked"`
}

// Classify ranks registrations by their best attempt, fastest first.
//
// Equal best times never share a rank: the one reached earlier wins, then
// the one registered earlier, then the lower ID. Ranks run 1..n without gaps.
// The input slice and its attempts are not modified.
func Classify(regs []entrant.Registration) Classification {
	c := Classification{
		Rows:     make([]ClassificationRow, 0, len(regs)),
		Unranked: make([]entrant.Registration, 0),
	}

	for _, r := range regs {
		best, ok := r.BestAttempt()
		if !ok {
			c.Unranked = append(c.Unranked, r)
			continue
		}
		c.Rows = append(c.Rows, ClassificationRow{
			Registration: r,
			Best:         best.Duration,
			AchievedAt:   best.RecordedAt,
		})
	}

	sort.SliceStable(c.Rows, func(i, j int) bool {
		a, b := c.Rows[i], c.Rows[j]
		if a.Best != b.Best {
			return a.Best < b.Best
		}
		if !a.AchievedAt.Equal(b.AchievedAt) {
			return a.AchievedAt.Before(b.AchievedAt)
		}
		return registeredBefore(a.Registration, b.Registration)
	})
	for i := range c.Rows {
		c.Rows[i].Rank = i + 1
	}

	sort.SliceStable(c.Unranked, func(i, j int) bool {
		return registeredBefore(c.Unranked[i], c.Unranked[j])
	})

	return c
}

func registeredBefore(a, b entrant.Registration) bool {
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// Position returns the rank of a registration, 0 when it is unranked.
func (c Classification) Position(registrationID uuid.UUID) int {
	for _, row := range c.Rows {
		if row.Registration.ID == registrationID {
			return row.Rank
		}
	}
	return 0
}

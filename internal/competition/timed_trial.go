package competition

import (
	"fmt"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/ranking"
)

// TimedTrial is a line-following competition ranked by best lap time.
type TimedTrial struct {
	c Competition
}

func AsTimedTrial(c Competition) (*TimedTrial, error) {
	if c.Kind != KindLineFollowing {
		return nil, fmt.Errorf("%w: %s is %s, not line following", ErrWrongKind, c.Name, c.Kind)
	}
	return &TimedTrial{c: c}, nil
}

func (t *TimedTrial) Competition() Competition {
	return t.c
}

func (t *TimedTrial) Accept(e entrant.Entrant) error {
	return t.c.accepting()
}

// Classify ranks the approved registrations.
func (t *TimedTrial) Classify(regs []entrant.Registration) ranking.Classification {
	return ranking.Classify(entrant.FilterApproved(regs))
}

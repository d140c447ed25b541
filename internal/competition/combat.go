package competition

import (
	"fmt"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
)

// Combat is an elimination competition. Only combat exposes bracket
// operations.
type Combat struct {
	c Competition
}

func AsCombat(c Competition) (*Combat, error) {
	if c.Kind != KindCombat {
		return nil, fmt.Errorf("%w: %s is %s, not combat", ErrWrongKind, c.Name, c.Kind)
	}
	return &Combat{c: c}, nil
}

func (cb *Combat) Competition() Competition {
	return cb.c
}

func (cb *Combat) Accept(e entrant.Entrant) error {
	if err := cb.c.accepting(); err != nil {
		return err
	}
	if cb.c.WeightLimit > 0 && e.WeightClass > cb.c.WeightLimit {
		return fmt.Errorf("%w: %s weighs %.2fkg, limit %.2fkg", ErrOverweight, e.Name, e.WeightClass, cb.c.WeightLimit)
	}
	return nil
}

// BuildBracket seats the approved registrations, ignoring pending and
// rejected ones.
func (cb *Combat) BuildBracket(regs []entrant.Registration) (*bracket.Bracket, error) {
	return bracket.Build(cb.c.ID, entrant.FilterApproved(regs))
}

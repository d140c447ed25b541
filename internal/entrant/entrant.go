package entrant

import (
	"time"

	"github.com/google/uuid"
)

// Entrant is a robot as it was registered with the organizer.
type Entrant struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Team        *string   `db:"team" json:"team,omitempty"`
	WeightClass float64   `db:"weight_class" json:"weight_class"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func NewEntrant(name string, team *string, weightClass float64) Entrant {
	return Entrant{
		ID:          uuid.New(),
		Name:        name,
		Team:        team,
		WeightClass: weightClass,
		CreatedAt:   time.Now().UTC(),
	}
}

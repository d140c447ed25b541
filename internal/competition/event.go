package competition

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventPlanned    EventStatus = "planned"
	EventInProgress EventStatus = "in_progress"
	EventFinished   EventStatus = "finished"
)

// Event groups competitions. Its dates are informational only.
type Event struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	StartsOn  time.Time   `db:"starts_on" json:"starts_on"`
	EndsOn    time.Time   `db:"ends_on" json:"ends_on"`
	Status    EventStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

var ErrInvalidEventDates = errors.New("event must end after it starts")

func NewEvent(name string, startsOn, endsOn time.Time) (Event, error) {
	if endsOn.Before(startsOn) {
		return Event{}, ErrInvalidEventDates
	}
	return Event{
		ID:        uuid.New(),
		Name:      name,
		StartsOn:  startsOn.UTC(),
		EndsOn:    endsOn.UTC(),
		Status:    EventPlanned,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StatusFrom derives the event status from its competitions: planned until
// one of them closes registration, finished once all of them are.
func StatusFrom(competitions []Competition) EventStatus {
	started, finished := 0, 0
	for _, c := range competitions {
		switch c.Status {
		case StatusInProgress:
			started++
		case StatusFinished:
			started++
			finished++
		}
	}
	switch {
	case started == 0:
		return EventPlanned
	case finished == len(competitions):
		return EventFinished
	}
	return EventInProgress
}

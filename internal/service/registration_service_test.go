package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	c := s.competition(t, competition.KindCombat)

	tests := []struct {
		name    string
		input   EntrantInput
		wantErr error
	}{
		{name: "valid", input: EntrantInput{Name: "Sparky", Team: "Volts", WeightClass: 1.5}},
		{name: "blank name", input: EntrantInput{Name: "  ", WeightClass: 1}, wantErr: ErrValidationFailed},
		{name: "long name", input: EntrantInput{Name: "This robot name is definitely far too long to be accepted", WeightClass: 1}, wantErr: ErrValidationFailed},
		{name: "no weight", input: EntrantInput{Name: "Feather"}, wantErr: ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := s.registrations.Register(ctx, c.ID.String(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entrant.StatusPending, reg.Status)
			assert.Equal(t, int64(1), reg.Seq)
		})
	}
}

func TestRegister_WeightLimit(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	limited, err := s.tournaments.CreateCompetition(ctx, c.EventID.String(), "Featherweight", "combate", 1.36)
	require.NoError(t, err)

	_, err = s.registrations.Register(ctx, limited.ID.String(), EntrantInput{Name: "Heavy", WeightClass: 3})
	assert.ErrorIs(t, err, competition.ErrOverweight)

	_, err = s.registrations.Register(ctx, limited.ID.String(), EntrantInput{Name: "Light", WeightClass: 1.2})
	assert.NoError(t, err)
}

func TestDecide(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	c := s.competition(t, competition.KindCombat)

	first, err := s.registrations.Register(ctx, c.ID.String(), EntrantInput{Name: "One", WeightClass: 1})
	require.NoError(t, err)
	second, err := s.registrations.Register(ctx, c.ID.String(), EntrantInput{Name: "Two", WeightClass: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)

	approved, err := s.registrations.Decide(ctx, first.ID.String(), entrant.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entrant.StatusApproved, approved.Status)

	_, err = s.registrations.Decide(ctx, first.ID.String(), entrant.StatusRejected)
	assert.ErrorIs(t, err, entrant.ErrInvalidStatus)

	_, err = s.registrations.Decide(ctx, second.ID.String(), entrant.StatusPending)
	assert.ErrorIs(t, err, entrant.ErrInvalidStatus)

	_, err = s.registrations.Decide(ctx, second.ID.String(), entrant.StatusRejected)
	require.NoError(t, err)

	regs, err := s.registrations.Registrations(ctx, c.ID.String())
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "One", regs[0].EntrantName)
	assert.Equal(t, entrant.StatusRejected, regs[1].Status)
}

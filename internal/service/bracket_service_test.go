package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBracket(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	regs := s.registerApproved(t, c.ID, 5)

	// A pending robot is left out of the bracket
	_, err := s.registrations.Register(ctx, c.ID.String(), EntrantInput{Name: "Late", WeightClass: 1})
	require.NoError(t, err)

	event, err := s.tournaments.GetEventData(ctx, c.EventID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.EventPlanned, event.Event.Status)

	data, err := s.brackets.BuildBracket(ctx, c.ID.String())
	require.NoError(t, err)

	assert.Equal(t, competition.StatusInProgress, data.Competition.Status)
	event, err = s.tournaments.GetEventData(ctx, c.EventID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.EventInProgress, event.Event.Status)
	assert.Equal(t, 3, data.Bracket.RoundCount())
	require.Len(t, data.Bracket.Seeds, 5)
	for i, seed := range data.Bracket.Seeds {
		assert.Equal(t, regs[i].ID, seed.ID)
	}

	require.NotNil(t, data.View.NextMatch)
	assert.Equal(t, bracket.MatchRef{Round: 0, Index: 3}, *data.View.NextMatch)
	require.Len(t, s.published.brackets, 1)

	stored, err := s.tournaments.GetCompetition(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.StatusInProgress, stored.Status)

	_, err = s.registrations.Register(ctx, c.ID.String(), EntrantInput{Name: "Too Late", WeightClass: 1})
	assert.ErrorIs(t, err, competition.ErrRegistrationClosed)

	_, err = s.brackets.BuildBracket(ctx, c.ID.String())
	assert.ErrorIs(t, err, ErrBracketExists)

	loaded, err := s.brackets.GetBracket(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, data.Bracket.Snapshot(), loaded.Bracket.Snapshot())
}

func TestBuildBracket_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	empty := s.competition(t, competition.KindCombat)
	_, err := s.brackets.BuildBracket(ctx, empty.ID.String())
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	trial := s.competition(t, competition.KindLineFollowing)
	s.registerApproved(t, trial.ID, 2)
	_, err = s.brackets.BuildBracket(ctx, trial.ID.String())
	assert.ErrorIs(t, err, competition.ErrWrongKind)

	_, err = s.brackets.GetBracket(ctx, empty.ID.String())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBuildBracket_SingleEntrantIsChampion(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	regs := s.registerApproved(t, c.ID, 1)

	data, err := s.brackets.BuildBracket(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.StatusFinished, data.Competition.Status)

	champion, err := s.brackets.Champion(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, regs[0].ID, champion.ID)
}

func TestDeclareWinner_PlaysOutBracket(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	regs := s.registerApproved(t, c.ID, 5)
	_, err := s.brackets.BuildBracket(ctx, c.ID.String())
	require.NoError(t, err)

	_, err = s.brackets.Champion(ctx, c.ID.String())
	assert.ErrorIs(t, err, bracket.ErrNotYetDetermined)

	// Seeds 1-3 have byes, seed 4 meets seed 5
	_, err = s.matches.StartMatch(ctx, c.ID.String(), bracket.MatchRef{Round: 0, Index: 3})
	require.NoError(t, err)
	res, err := s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 0, Index: 3}, regs[4].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, res.Match.Status)

	semi, err := s.matches.GetMatch(ctx, c.ID.String(), bracket.MatchRef{Round: 1, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchScheduled, semi.Match.Status)
	assert.Equal(t, regs[2].ID, semi.Match.Slot1.RegistrationID)
	assert.Equal(t, regs[4].ID, semi.Match.Slot2.RegistrationID)

	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 2, Index: 0}, regs[0].ID)
	assert.ErrorIs(t, err, bracket.ErrIncompleteMatch)

	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 1, Index: 0}, regs[0].ID)
	require.NoError(t, err)
	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 1, Index: 1}, regs[4].ID)
	require.NoError(t, err)

	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 2, Index: 0}, regs[2].ID)
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner)

	res, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 2, Index: 0}, regs[0].ID)
	require.NoError(t, err)
	assert.Nil(t, res.NextMatch)

	champion, err := s.brackets.Champion(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, regs[0].ID, champion.ID)

	stored, err := s.tournaments.GetCompetition(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.StatusFinished, stored.Status)

	// The semi-final feeding a played final is locked
	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 1, Index: 1}, regs[2].ID)
	assert.ErrorIs(t, err, bracket.ErrResultLocked)

	// build + 5 successful changes
	assert.Len(t, s.published.brackets, 6)
}

func TestDeclareWinner_CorrectionBeforeNextMatch(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	regs := s.registerApproved(t, c.ID, 4)
	_, err := s.brackets.BuildBracket(ctx, c.ID.String())
	require.NoError(t, err)

	first := bracket.MatchRef{Round: 0, Index: 0}
	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), first, regs[0].ID)
	require.NoError(t, err)
	_, err = s.matches.DeclareWinner(ctx, c.ID.String(), first, regs[1].ID)
	require.NoError(t, err)

	final, err := s.matches.GetMatch(ctx, c.ID.String(), bracket.MatchRef{Round: 1, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, regs[1].ID, final.Match.Slot1.RegistrationID)
	assert.Equal(t, bracket.MatchPending, final.Match.Status)
}

func TestDeclareWinner_ConcurrentJudges(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	c := s.competition(t, competition.KindCombat)
	regs := s.registerApproved(t, c.ID, 8)
	_, err := s.brackets.BuildBracket(ctx, c.ID.String())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.matches.DeclareWinner(ctx, c.ID.String(), bracket.MatchRef{Round: 0, Index: i}, regs[2*i].ID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	data, err := s.brackets.GetBracket(ctx, c.ID.String())
	require.NoError(t, err)
	semis := data.Bracket.Snapshot()[1].Matches
	want := [][2]entrant.Registration{{regs[0], regs[2]}, {regs[4], regs[6]}}
	for i, m := range semis {
		assert.Equal(t, bracket.MatchScheduled, m.Status)
		assert.Equal(t, want[i][0].ID, m.Slot1.RegistrationID)
		assert.Equal(t, want[i][1].ID, m.Slot2.RegistrationID)
	}
}

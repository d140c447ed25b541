package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedApproved(t *testing.T, database *sqlx.DB, competitionID uuid.UUID, n int) []entrant.Registration {
	t.Helper()
	store := NewRegistrationStore(database)
	ctx := context.Background()

	regs := make([]entrant.Registration, n)
	inTx(t, database, func(tx *sqlx.Tx) error {
		for i := range regs {
			e := entrant.NewEntrant(fmt.Sprintf("Robot %d", i+1), nil, 1.0)
			if err := store.CreateEntrant(ctx, tx, &e); err != nil {
				return err
			}
			regs[i] = entrant.Registration{
				ID:            uuid.New(),
				CompetitionID: competitionID,
				EntrantID:     e.ID,
				Status:        entrant.StatusApproved,
				CreatedAt:     time.Now().UTC(),
				EntrantName:   e.Name,
				WeightClass:   e.WeightClass,
			}
			if err := store.CreateRegistration(ctx, tx, &regs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return regs
}

func TestBracketRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewBracketStore(database)
	ctx := context.Background()
	c := createCompetition(t, database, competition.KindCombat)
	regs := seedApproved(t, database, c.ID, 5)

	b, err := bracket.Build(c.ID, regs)
	require.NoError(t, err)
	inTx(t, database, func(tx *sqlx.Tx) error { return store.CreateBracket(ctx, tx, b) })

	loaded, err := store.GetBracket(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, b.Snapshot(), loaded.Snapshot())
	require.Len(t, loaded.Seeds, 5)
	assert.Equal(t, "Robot 1", loaded.Seeds[0].EntrantName)

	ref := bracket.MatchRef{Round: 0, Index: 3}
	require.NoError(t, loaded.DeclareWinner(ref, regs[4].ID))
	changed := []bracket.Match{}
	for _, m := range loaded.Matches() {
		if m.Ref == ref || m.Ref == (bracket.MatchRef{Round: 1, Index: 1}) {
			changed = append(changed, m)
		}
	}
	inTx(t, database, func(tx *sqlx.Tx) error { return store.UpdateMatches(ctx, tx, c.ID, changed) })

	reloaded, err := store.GetBracket(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, loaded.Snapshot(), reloaded.Snapshot())

	semi, err := reloaded.Match(bracket.MatchRef{Round: 1, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchScheduled, semi.Status)
	assert.Equal(t, regs[4].ID, semi.Slot2.RegistrationID)
}

func TestGetBracket_Missing(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewBracketStore(database)
	c := createCompetition(t, database, competition.KindCombat)

	_, err := store.GetBracket(context.Background(), c.ID.String())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.GetBracket(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

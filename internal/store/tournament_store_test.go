package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/db"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Connect(db.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}

func inTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func createCompetition(t *testing.T, database *sqlx.DB, kind competition.Kind) competition.Competition {
	t.Helper()
	store := NewTournamentStore(database)

	start := time.Date(2026, 5, 16, 9, 0, 0, 0, time.UTC)
	event, err := competition.NewEvent("Robot Games", start, start.Add(48*time.Hour))
	require.NoError(t, err)
	c := competition.New(event.ID, "Arena", kind, 0)

	inTx(t, database, func(tx *sqlx.Tx) error {
		if err := store.CreateEvent(context.Background(), tx, &event); err != nil {
			return err
		}
		return store.CreateCompetition(context.Background(), tx, &c)
	})
	return c
}

func TestCreateCompetition(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	c := createCompetition(t, database, competition.KindCombat)

	fetched, err := store.GetCompetition(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, c.ID, fetched.ID)
	assert.Equal(t, c.EventID, fetched.EventID)
	assert.Equal(t, c.Name, fetched.Name)
	assert.Equal(t, competition.KindCombat, fetched.Kind)
	assert.Equal(t, competition.StatusRegistrationOpen, fetched.Status)
	assert.WithinDuration(t, c.CreatedAt, fetched.CreatedAt, time.Second)

	event, err := store.GetEvent(ctx, c.EventID.String())
	require.NoError(t, err)
	assert.Equal(t, "Robot Games", event.Name)

	list, err := store.GetCompetitions(ctx, c.EventID.String())
	require.NoError(t, err)
	require.Len(t, list, 1)

	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.UpdateCompetitionStatusTx(ctx, tx, c.ID.String(), competition.StatusInProgress)
	})
	fetched, err = store.GetCompetition(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, competition.StatusInProgress, fetched.Status)
}

func TestCreateRegistrations(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewRegistrationStore(database)
	ctx := context.Background()
	c := createCompetition(t, database, competition.KindLineFollowing)

	team := "Volts"
	var regs []entrant.Registration
	for i, name := range []string{"Tracer", "Zippy", "Blink"} {
		e := entrant.NewEntrant(name, &team, 1.0)
		reg := entrant.Registration{
			ID:            uuid.New(),
			CompetitionID: c.ID,
			EntrantID:     e.ID,
			Status:        entrant.StatusPending,
			CreatedAt:     time.Now().UTC(),
		}
		inTx(t, database, func(tx *sqlx.Tx) error {
			if err := store.CreateEntrant(ctx, tx, &e); err != nil {
				return err
			}
			return store.CreateRegistration(ctx, tx, &reg)
		})
		assert.Equal(t, int64(i+1), reg.Seq)
		regs = append(regs, reg)
	}

	inTx(t, database, func(tx *sqlx.Tx) error {
		if err := store.UpdateStatusTx(ctx, tx, regs[0].ID.String(), entrant.StatusApproved); err != nil {
			return err
		}
		return store.UpdateStatusTx(ctx, tx, regs[2].ID.String(), entrant.StatusApproved)
	})

	fetched, err := store.GetRegistration(ctx, regs[1].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Zippy", fetched.EntrantName)
	assert.Equal(t, entrant.StatusPending, fetched.Status)

	e, err := store.GetEntrant(ctx, fetched.EntrantID.String())
	require.NoError(t, err)
	require.NotNil(t, e.Team)
	assert.Equal(t, "Volts", *e.Team)

	all, err := store.GetRegistrations(ctx, c.ID.String())
	require.NoError(t, err)
	require.Len(t, all, 3)

	inTx(t, database, func(tx *sqlx.Tx) error {
		approved, err := store.ApprovedRegistrationsTx(ctx, tx, c.ID.String())
		if err != nil {
			return err
		}
		require.Len(t, approved, 2)
		assert.Equal(t, regs[0].ID, approved[0].ID)
		assert.Equal(t, regs[2].ID, approved[1].ID)
		return nil
	})
}

func TestAttempts(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewRegistrationStore(database)
	ctx := context.Background()
	c := createCompetition(t, database, competition.KindLineFollowing)

	e := entrant.NewEntrant("Tracer", nil, 1.0)
	reg := entrant.Registration{ID: uuid.New(), CompetitionID: c.ID, EntrantID: e.ID, Status: entrant.StatusApproved, CreatedAt: time.Now().UTC()}
	idle := entrant.NewEntrant("Idle", nil, 1.0)
	idleReg := entrant.Registration{ID: uuid.New(), CompetitionID: c.ID, EntrantID: idle.ID, Status: entrant.StatusApproved, CreatedAt: time.Now().UTC()}
	inTx(t, database, func(tx *sqlx.Tx) error {
		for _, pair := range []struct {
			e *entrant.Entrant
			r *entrant.Registration
		}{{&e, &reg}, {&idle, &idleReg}} {
			if err := store.CreateEntrant(ctx, tx, pair.e); err != nil {
				return err
			}
			if err := store.CreateRegistration(ctx, tx, pair.r); err != nil {
				return err
			}
		}
		return nil
	})

	at := time.Date(2026, 5, 16, 10, 0, 0, 0, time.UTC)
	for i, d := range []time.Duration{12500 * time.Millisecond, 9900 * time.Millisecond} {
		a, err := entrant.NewAttempt(reg.ID, d, at.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		inTx(t, database, func(tx *sqlx.Tx) error { return store.CreateAttempt(ctx, tx, &a) })
	}

	attempts, err := store.GetAttempts(ctx, reg.ID.String())
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 12500*time.Millisecond, attempts[0].Duration)
	assert.True(t, at.Equal(attempts[0].RecordedAt))

	inTx(t, database, func(tx *sqlx.Tx) error {
		regs, err := store.RegistrationsWithAttemptsTx(ctx, tx, c.ID.String())
		if err != nil {
			return err
		}
		require.Len(t, regs, 2)
		assert.Len(t, regs[0].Attempts, 2)
		assert.Empty(t, regs[1].Attempts)
		return nil
	})
}

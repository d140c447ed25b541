package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/db"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a private in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Connect(db.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}

// recorder keeps every view it is handed.
type recorder struct {
	brackets        []report.BracketView
	classifications []report.ClassificationView
}

func (r *recorder) PublishBracket(_ context.Context, v report.BracketView) error {
	r.brackets = append(r.brackets, v)
	return nil
}

func (r *recorder) PublishClassification(_ context.Context, v report.ClassificationView) error {
	r.classifications = append(r.classifications, v)
	return nil
}

type services struct {
	tournaments   *TournamentService
	registrations *RegistrationService
	brackets      *BracketService
	matches       *MatchService
	rankings      *RankingService
	published     *recorder
}

func newServices(t *testing.T) *services {
	t.Helper()

	database := setupTestDB(t)
	t.Cleanup(func() { database.Close() })

	tournamentStore := store.NewTournamentStore(database)
	registrationStore := store.NewRegistrationStore(database)
	bracketStore := store.NewBracketStore(database)
	rec := &recorder{}

	return &services{
		tournaments:   NewTournamentService(database, tournamentStore),
		registrations: NewRegistrationService(database, tournamentStore, registrationStore),
		brackets:      NewBracketService(database, tournamentStore, bracketStore, registrationStore, rec),
		matches:       NewMatchService(database, tournamentStore, bracketStore, rec),
		rankings:      NewRankingService(database, tournamentStore, registrationStore, registrationStore, rec),
		published:     rec,
	}
}

func (s *services) competition(t *testing.T, kind competition.Kind) *competition.Competition {
	t.Helper()
	ctx := context.Background()

	start := time.Date(2026, 5, 16, 9, 0, 0, 0, time.UTC)
	event, err := s.tournaments.CreateEvent(ctx, "Robot Games", start, start.Add(48*time.Hour))
	require.NoError(t, err)

	c, err := s.tournaments.CreateCompetition(ctx, event.ID.String(), string(kind)+" open", string(kind), 0)
	require.NoError(t, err)
	return c
}

// registerApproved registers and approves n robots named Robot 1..n.
func (s *services) registerApproved(t *testing.T, competitionID uuid.UUID, n int) []entrant.Registration {
	t.Helper()
	ctx := context.Background()

	regs := make([]entrant.Registration, 0, n)
	for i := 1; i <= n; i++ {
		reg, err := s.registrations.Register(ctx, competitionID.String(), EntrantInput{
			Name:        fmt.Sprintf("Robot %d", i),
			WeightClass: 1.5,
		})
		require.NoError(t, err)

		reg, err = s.registrations.Decide(ctx, reg.ID.String(), entrant.StatusApproved)
		require.NoError(t, err)
		regs = append(regs, *reg)
	}
	return regs
}

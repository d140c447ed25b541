package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/config"
	"github.com/AdamBeresnev/robo-arena/internal/db"
	"github.com/AdamBeresnev/robo-arena/internal/export"
	"github.com/AdamBeresnev/robo-arena/internal/live"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/service"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type application struct {
	tournaments   *service.TournamentService
	registrations *service.RegistrationService
	brackets      *service.BracketService
	matches       *service.MatchService
	rankings      *service.RankingService
	live          *live.Handler
	corsOrigins   []string
}

func newApplication(database *sqlx.DB, hub *live.Hub, publisher report.Publisher, corsOrigins []string) *application {
	tournamentStore := store.NewTournamentStore(database)
	registrationStore := store.NewRegistrationStore(database)
	bracketStore := store.NewBracketStore(database)

	return &application{
		tournaments:   service.NewTournamentService(database, tournamentStore),
		registrations: service.NewRegistrationService(database, tournamentStore, registrationStore),
		brackets:      service.NewBracketService(database, tournamentStore, bracketStore, registrationStore, publisher),
		matches:       service.NewMatchService(database, tournamentStore, bracketStore, publisher),
		rankings:      service.NewRankingService(database, tournamentStore, registrationStore, registrationStore, publisher),
		live:          live.NewHandler(hub, corsOrigins),
		corsOrigins:   corsOrigins,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub()
	publishers := report.Multi{hub}
	if cfg.ExportEnabled() {
		exporter, err := export.NewS3(ctx, cfg.Export())
		if err != nil {
			log.Fatal("Failed to set up export bucket:", err)
		}
		publishers = append(publishers, exporter)
		slog.Info("Exporting results", "bucket", cfg.ExportBucket, "public_base_url", cfg.ExportPublicBaseURL)
	}

	app := newApplication(database, hub, publishers, cfg.CORSOrigins)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("Server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	slog.Info("Server stopped")
}

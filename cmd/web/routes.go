package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/httputil"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type eventRequest struct {
	Name     string    `json:"name"`
	StartsOn time.Time `json:"starts_on"`
	EndsOn   time.Time `json:"ends_on"`
}

type competitionRequest struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	WeightLimit float64 `json:"weight_limit"`
}

type registrationRequest struct {
	Name        string  `json:"name"`
	Team        string  `json:"team"`
	WeightClass float64 `json:"weight_class"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type winnerRequest struct {
	WinnerID uuid.UUID `json:"winner_id"`
}

type attemptRequest struct {
	// Milliseconds as timed by the judge
	DurationMS int64      `json:"duration_ms"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// Largest duration_ms that still fits in a time.Duration.
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

type matchResponse struct {
	Match     bracket.Match     `json:"match"`
	NextMatch *bracket.MatchRef `json:"next_match,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.BadRequest(w, "Invalid JSON body", err)
		return false
	}
	return true
}

// matchRef reads the 1-based round and index from the URL.
func matchRef(w http.ResponseWriter, r *http.Request) (bracket.MatchRef, bool) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || round < 1 {
		httputil.BadRequest(w, "Invalid round", err)
		return bracket.MatchRef{}, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 {
		httputil.BadRequest(w, "Invalid match index", err)
		return bracket.MatchRef{}, false
	}
	return bracket.MatchRef{Round: round - 1, Index: index - 1}, true
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/events", func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if !decode(w, r, &req) {
			return
		}
		event, err := app.tournaments.CreateEvent(r.Context(), req.Name, req.StartsOn, req.EndsOn)
		if err != nil {
			httputil.FromError(w, "Failed to create event", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, event)
	})

	r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		data, err := app.tournaments.GetEventData(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httputil.FromError(w, "Event not found", err)
			return
		}
		httputil.JSON(w, http.StatusOK, data)
	})

	r.Post("/events/{id}/competitions", func(w http.ResponseWriter, r *http.Request) {
		var req competitionRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := app.tournaments.CreateCompetition(r.Context(), chi.URLParam(r, "id"), req.Name, req.Kind, req.WeightLimit)
		if err != nil {
			httputil.FromError(w, "Failed to create competition", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, c)
	})

	r.Route("/competitions/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			c, err := app.tournaments.GetCompetition(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.FromError(w, "Competition not found", err)
				return
			}
			httputil.JSON(w, http.StatusOK, c)
		})

		r.Post("/registrations", func(w http.ResponseWriter, r *http.Request) {
			var req registrationRequest
			if !decode(w, r, &req) {
				return
			}
			reg, err := app.registrations.Register(r.Context(), chi.URLParam(r, "id"), service.EntrantInput{
				Name:        req.Name,
				Team:        req.Team,
				WeightClass: req.WeightClass,
			})
			if err != nil {
				httputil.FromError(w, "Failed to register robot", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, reg)
		})

		r.Get("/registrations", func(w http.ResponseWriter, r *http.Request) {
			regs, err := app.registrations.Registrations(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.FromError(w, "Failed to get registrations", err)
				return
			}
			httputil.JSON(w, http.StatusOK, regs)
		})

		r.Post("/bracket", func(w http.ResponseWriter, r *http.Request) {
			data, err := app.brackets.BuildBracket(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.FromError(w, "Failed to build bracket", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, data.View)
		})

		r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
			data, err := app.brackets.GetBracket(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.FromError(w, "Bracket not found", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data.View)
		})

		r.Get("/champion", func(w http.ResponseWriter, r *http.Request) {
			champion, err := app.brackets.Champion(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.FromError(w, "Champion not available", err)
				return
			}
			httputil.JSON(w, http.StatusOK, champion)
		})

		r.Get("/matches/{round}/{index}", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := matchRef(w, r)
			if !ok {
				return
			}
			data, err := app.matches.GetMatch(r.Context(), chi.URLParam(r, "id"), ref)
			if err != nil {
				httputil.FromError(w, "Match not found", err)
				return
			}
			httputil.JSON(w, http.StatusOK, matchResponse{Match: data.Match, NextMatch: data.NextMatch})
		})

		r.Post("/matches/{round}/{index}/start", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := matchRef(w, r)
			if !ok {
				return
			}
			data, err := app.matches.StartMatch(r.Context(), chi.URLParam(r, "id"), ref)
			if err != nil {
				httputil.FromError(w, "Failed to start match", err)
				return
			}
			httputil.JSON(w, http.StatusOK, matchResponse{Match: data.Match, NextMatch: data.NextMatch})
		})

		r.Post("/matches/{round}/{index}/winner", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := matchRef(w, r)
			if !ok {
				return
			}
			var req winnerRequest
			if !decode(w, r, &req) {
				return
			}
			data, err := app.matches.DeclareWinner(r.Context(), chi.URLParam(r, "id"), ref, req.WinnerID)
			if err != nil {
				httputil.FromError(w, "Failed to declare winner", err)
				return
			}
			httputil.JSON(w, http.StatusOK, matchResponse{Match: data.Match, NextMatch: data.NextMatch})
		})

		r.Get("/classification", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			classification, err := app.rankings.Classification(r.Context(), id)
			if err != nil {
				httputil.FromError(w, "Failed to get classification", err)
				return
			}
			compID, err := uuid.Parse(id)
			if err != nil {
				httputil.BadRequest(w, "Invalid competition ID", err)
				return
			}
			httputil.JSON(w, http.StatusOK, report.NewClassificationView(compID, classification))
		})

		r.Post("/finish", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			compID, err := uuid.Parse(id)
			if err != nil {
				httputil.BadRequest(w, "Invalid competition ID", err)
				return
			}
			classification, err := app.rankings.FinishTrial(r.Context(), id)
			if err != nil {
				httputil.FromError(w, "Failed to finish competition", err)
				return
			}
			httputil.JSON(w, http.StatusOK, report.NewClassificationView(compID, classification))
		})

		r.Get("/live", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, err := app.tournaments.GetCompetition(r.Context(), id); err != nil {
				httputil.FromError(w, "Competition not found", err)
				return
			}
			app.live.Serve(w, r, id)
		})
	})

	r.Patch("/registrations/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if !decode(w, r, &req) {
			return
		}
		status, err := entrant.ParseStatus(req.Status)
		if err != nil {
			httputil.FromError(w, "Invalid status", err)
			return
		}
		reg, err := app.registrations.Decide(r.Context(), chi.URLParam(r, "id"), status)
		if err != nil {
			httputil.FromError(w, "Failed to update registration", err)
			return
		}
		httputil.JSON(w, http.StatusOK, reg)
	})

	r.Post("/registrations/{id}/attempts", func(w http.ResponseWriter, r *http.Request) {
		var req attemptRequest
		if !decode(w, r, &req) {
			return
		}
		if req.DurationMS < 0 || req.DurationMS > maxDurationMS {
			httputil.BadRequest(w, "Invalid attempt duration", fmt.Errorf("duration_ms %d out of range", req.DurationMS))
			return
		}
		at := time.Now().UTC()
		if req.RecordedAt != nil {
			at = *req.RecordedAt
		}
		attempt, err := app.rankings.RecordAttempt(r.Context(), chi.URLParam(r, "id"), time.Duration(req.DurationMS)*time.Millisecond, at)
		if err != nil {
			httputil.FromError(w, "Failed to record attempt", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, attempt)
	})

	return r
}

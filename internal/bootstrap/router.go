package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/squadline/squadline-backend/config"
	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	apimw "github.com/squadline/squadline-backend/internal/api/http/middleware"
	"github.com/squadline/squadline-backend/internal/attendance"
	attendancehttp "github.com/squadline/squadline-backend/internal/attendance/http"
	authhttp "github.com/squadline/squadline-backend/internal/auth/http"
	authmw "github.com/squadline/squadline-backend/internal/auth/middleware"
	authservice "github.com/squadline/squadline-backend/internal/auth/service"
	"github.com/squadline/squadline-backend/internal/board"
	boardhttp "github.com/squadline/squadline-backend/internal/board/http"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/events/domain"
	eventshttp "github.com/squadline/squadline-backend/internal/events/http"
	"github.com/squadline/squadline-backend/internal/events/repository"
	eventservice "github.com/squadline/squadline-backend/internal/events/service"
	"github.com/squadline/squadline-backend/internal/locations"
	locationshttp "github.com/squadline/squadline-backend/internal/locations/http"
	"github.com/squadline/squadline-backend/internal/metrics"
	"github.com/squadline/squadline-backend/internal/notify"
	"github.com/squadline/squadline-backend/internal/ordering"
	teamshttp "github.com/squadline/squadline-backend/internal/teams/http"
	teamrepo "github.com/squadline/squadline-backend/internal/teams/repository"
	teamservice "github.com/squadline/squadline-backend/internal/teams/service"
	"github.com/squadline/squadline-backend/internal/tickets"
	ticketshttp "github.com/squadline/squadline-backend/internal/tickets/http"
)

type RouterDeps struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     docstore.Store
	Publisher notify.Publisher
	Metrics   *metrics.Recorder
	Gatherer  prometheus.Gatherer
	Pingers   map[string]httpapi.Pinger

	// Verifier checks ID tokens. Unused with DEV_AUTH.
	Verifier authmw.TokenVerifier
	// Directory creates sign-in accounts for invited members.
	Directory teamservice.IdentityProvider
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version, dep.Pingers)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler(dep.Gatherer)))

	store := dep.Store
	teams := teamrepo.New(store)
	matchRepo := repository.New[domain.Match](store)
	trainingRepo := repository.New[domain.Training](store)
	refereeingRepo := repository.New[domain.RefereeingAssignment](store)

	authSvc := authservice.NewAuthService(teams)

	api := r.Group("/api/v1")
	if cfg.Server.DevAuth {
		dep.Logger.Warn().Msg("DEV_AUTH enabled, identities are taken from X-User-* headers")
		api.Use(authmw.DevIdentity())
	} else {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	}
	api.Use(authmw.Session(authSvc))

	authhttp.New(authSvc).Register(api.Group("/auth"))

	teamHandler := teamshttp.New(teamservice.NewTeamService(teams, dep.Directory))
	teamHandler.RegisterRoot(api)

	limiter := ticketshttp.NewLimiter(cfg.Limits.TicketsPerMinute, cfg.Limits.TicketBurst)
	ticketshttp.New(tickets.NewService(store), limiter).Register(api.Group("/tickets"))

	team := api.Group("/teams/:teamId", authmw.RequireTeam("teamId"))
	teamHandler.Register(team)

	att := attendancehttp.New(attendance.NewService(teams, dep.Publisher, dep.Metrics, matchRepo, trainingRepo, refereeingRepo))

	matches := team.Group("/matches")
	eventshttp.New(eventservice.NewEventService(matchRepo, dep.Publisher)).
		WithReorderer(ordering.NewReorderer[domain.Match](matchRepo, dep.Publisher, dep.Metrics)).
		Register(matches)
	att.Register(matches, domain.KindMatch)

	trainings := team.Group("/trainings")
	eventshttp.New(eventservice.NewEventService(trainingRepo, dep.Publisher)).Register(trainings)
	att.Register(trainings, domain.KindTraining)

	refereeing := team.Group("/refereeing")
	eventshttp.New(eventservice.NewEventService(refereeingRepo, dep.Publisher)).Register(refereeing)
	att.Register(refereeing, domain.KindRefereeing)

	boardhttp.New(board.NewService(store, dep.Publisher)).Register(team.Group("/messages"))
	locationshttp.New(locations.NewService(store)).Register(team.Group("/locations"))

	return r
}

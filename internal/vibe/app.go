// Package vibe holds the application services that sit between the command
// and TUI surfaces and the stores: record reconciliation, team membership,
// the proposal review pipeline, and health checks.
package vibe

import (
	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/rs/zerolog"
)

// App is the central entry point for all vibeplanner operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Records       *RecordService
	Teams         *TeamService
	Review        *ReviewService
	Doctor        *DoctorService
	Notifications notify.Store

	Actor  Actor
	Bus    *eventbus.EventBus
	Config *config.Config
	DB     *db.DB

	log zerolog.Logger
}

// Stores groups the persistence dependencies of App.
type Stores struct {
	Records       records.Store
	Members       records.MemberStore
	Inbox         inbox.Store
	Notifications notify.Store
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, database *db.DB, st Stores, bus *eventbus.EventBus, log zerolog.Logger) *App {
	actor := Actor{UserID: cfg.Actor.UserID, TeamID: cfg.Actor.TeamID}

	return &App{
		Records:       NewRecordService(st.Records, st.Members, bus, log),
		Teams:         NewTeamService(st.Members, log),
		Review:        NewReviewService(st.Inbox, bus, actor.TeamID, log),
		Doctor:        NewDoctorService(cfg, database, st.Members, st.Inbox),
		Notifications: st.Notifications,
		Actor:         actor,
		Bus:           bus,
		Config:        cfg,
		DB:            database,
		log:           log,
	}
}

// NewApplier returns an Applier acting as the configured actor.
func (a *App) NewApplier() *Applier {
	return NewApplier(a.Records, a.Actor, a.log)
}

// NewSession wraps batch in a review session backed by the record applier.
func (a *App) NewSession(batch *review.Batch, notifier review.Notifier, width, height int) *review.Session {
	return review.NewSession(batch, a.NewApplier(), notifier, a.log.With().Str("component", "review").Logger(), review.Options{
		Concurrency: a.Config.Review.Concurrency,
		Width:       width,
		Height:      height,
	})
}

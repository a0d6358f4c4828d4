package vibe

import (
	"context"

	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/doctor"
	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/data/db"
)

// DoctorService runs health checks on the vibeplanner setup.
type DoctorService struct {
	config  *config.Config
	db      *db.DB
	members records.MemberStore
	inbox   inbox.Store
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(cfg *config.Config, database *db.DB, members records.MemberStore, in inbox.Store) *DoctorService {
	return &DoctorService{
		config:  cfg,
		db:      database,
		members: members,
		inbox:   in,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string) []doctor.Result {
	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewDatabaseCheck(d.db, d.config.DataDir),
		doctor.NewTeamCheck(d.members, d.config.Actor.TeamID, d.config.Actor.UserID),
		doctor.NewInboxCheck(d.inbox, d.config.Actor.TeamID),
	}
	return doctor.RunAll(ctx, checks)
}

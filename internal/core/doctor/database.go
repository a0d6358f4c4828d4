package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/colonyops/vibeplanner/internal/data/stores"
)

// Database is the subset of *db.DB the check inspects.
type Database interface {
	PingContext(ctx context.Context) error
	SchemaStatus(ctx context.Context) (db.SchemaStatus, error)
}

// DatabaseCheck verifies the data directory, the SQLite connection, and the
// schema version.
type DatabaseCheck struct {
	db      Database
	dataDir string
}

// NewDatabaseCheck creates a new database check.
func NewDatabaseCheck(db Database, dataDir string) *DatabaseCheck {
	return &DatabaseCheck{db: db, dataDir: dataDir}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dataDir)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Data directory",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  "Data directory",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s is not a directory", c.dataDir),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Data directory",
			Status: StatusPass,
			Detail: c.dataDir,
		})
	}

	if err := c.db.PingContext(ctx); err != nil {
		item := CheckItem{Label: "Connection", Status: StatusFail, Detail: err.Error()}
		switch {
		case stores.IsBusyError(err):
			item.Status = StatusWarn
			item.Detail = "database is busy; another vibeplanner process may be writing"
		case stores.IsCorruptionError(err):
			item.Detail = "database file is corrupted; it is moved aside on the next start"
		}
		result.Items = append(result.Items, item)
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "Connection",
		Status: StatusPass,
	})

	st, err := c.db.SchemaStatus(ctx)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Schema",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case st.Unknown > 0:
		result.Items = append(result.Items, CheckItem{
			Label:  "Schema",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d migration(s) from a newer release; upgrade vibeplanner", st.Unknown),
		})
	case st.Pending > 0:
		result.Items = append(result.Items, CheckItem{
			Label:  "Schema",
			Status: StatusFail,
			Detail: fmt.Sprintf("%d migration(s) pending", st.Pending),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Schema",
			Status: StatusPass,
			Detail: fmt.Sprintf("version %04d", st.Latest),
		})
	}

	return result
}

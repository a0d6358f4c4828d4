package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/inbox"
)

// staleAfter is how long a staged turn may wait before it is flagged.
const staleAfter = 7 * 24 * time.Hour

// nowFunc is overridden in tests.
var nowFunc = time.Now

// InboxCheck reports on proposals staged but not yet reviewed.
type InboxCheck struct {
	store  inbox.Store
	teamID string
}

// NewInboxCheck creates a new inbox check.
func NewInboxCheck(store inbox.Store, teamID string) *InboxCheck {
	return &InboxCheck{store: store, teamID: teamID}
}

func (c *InboxCheck) Name() string {
	return "Inbox"
}

func (c *InboxCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	turn, err := c.store.Latest(ctx, c.teamID)
	switch {
	case errors.Is(err, inbox.ErrEmpty):
		result.Items = append(result.Items, CheckItem{
			Label:  "Pending proposals",
			Status: StatusPass,
			Detail: "none",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Pending proposals",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case nowFunc().Sub(turn.CreatedAt) > staleAfter:
		result.Items = append(result.Items, CheckItem{
			Label:  "Pending proposals",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d waiting since %s; run 'vibeplanner review'", len(turn.Proposals), turn.CreatedAt.Local().Format(time.DateOnly)),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Pending proposals",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d waiting in turn %s", len(turn.Proposals), turn.ID),
		})
	}

	return result
}

package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/vibeplanner/internal/core/records"
)

// TeamCheck verifies the configured actor may write to the team.
type TeamCheck struct {
	members records.MemberStore
	teamID  string
	userID  string
}

// NewTeamCheck creates a new team membership check.
func NewTeamCheck(members records.MemberStore, teamID, userID string) *TeamCheck {
	return &TeamCheck{members: members, teamID: teamID, userID: userID}
}

func (c *TeamCheck) Name() string {
	return "Team"
}

func (c *TeamCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	list, err := c.members.ListMembers(ctx, c.teamID)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Members",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Members",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d in %s", len(list), c.teamID),
	})

	ok, err := c.members.IsMember(ctx, c.teamID, c.userID)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Membership",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case !ok:
		result.Items = append(result.Items, CheckItem{
			Label:  "Membership",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s is not a member; ask a member to run 'vibeplanner team add %s'", c.userID, c.userID),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Membership",
			Status: StatusPass,
			Detail: c.userID,
		})
	}

	return result
}

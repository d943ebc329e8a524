package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
)

func (a *App) Groups(ctx context.Context) error {
	list, err := a.groups.ListGroups(ctx, a.session.UserID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("You are not in any group. Use 'newgroup' or 'join <code>'.")
		return nil
	}
	for _, g := range list {
		a.println(fmt.Sprintf("%s  %-24s %d members", g.GroupCode, g.Name, len(g.Members)))
	}
	return nil
}

// NewGroup asks for a name, draws a free code and creates the group.
func (a *App) NewGroup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Group name", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: group name is required", common.ErrValidation)
	}

	a.println("Looking for a free group code...")
	code, err := a.groups.GenerateUniqueCode(ctx)
	if err != nil {
		return err
	}

	g, err := a.groups.CreateGroup(ctx, a.session.UserID, name, code)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Created group %q. Share code %s to invite others.", g.Name, g.GroupCode))
	return nil
}

func (a *App) Join(ctx context.Context, code string) error {
	g, err := a.groups.JoinGroup(ctx, a.session.UserID, code)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Joined %q (%d members)", g.Name, len(g.Members)))
	return nil
}

// Feed prints the shared entries of a group's members.
func (a *App) Feed(ctx context.Context, code string) error {
	g, list, err := a.groups.Feed(ctx, code)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("%s (%s)", g.Name, g.GroupCode))
	if len(list) == 0 {
		a.println("Nothing shared yet")
		return nil
	}
	for _, e := range list {
		a.println(fmt.Sprintf("%s  %s  entry %s", e.Date, e.UserID, e.ID))
		a.printEntry(e)
	}
	return nil
}

func (a *App) React(ctx context.Context, code, entryID, kind string) error {
	e, err := a.groups.React(ctx, code, entryID, kind)
	if err != nil {
		return err
	}
	a.println("Reacted: " + summarizeReactions(e.Reactions))
	return nil
}

// Toggle flips the visibility of one of the user's entries.
func (a *App) Toggle(ctx context.Context, code, entryID string) error {
	e, err := a.groups.TogglePrivacy(ctx, code, entryID, a.session.UserID)
	if err != nil {
		return err
	}
	if e.IsPublic {
		a.println("Entry is now shared with your groups")
	} else {
		a.println("Entry is now private")
	}
	return nil
}

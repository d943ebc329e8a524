package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
)

// Today reconciles and prints today's entry. A cached entry is printed first
// while the server is asked.
func (a *App) Today(ctx context.Context) error {
	view, err := a.entries.LoadTodaysEntry(ctx, a.session.UserID, a.printView)
	if err != nil {
		return err
	}
	a.printView(view)
	return nil
}

// Write creates today's entry or edits it. Empty answers keep what is there.
func (a *App) Write(ctx context.Context) error {
	view := a.entries.View()
	if view.Mode != models.ModeCreate && view.Mode != models.ModeEdit {
		var err error
		if view, err = a.entries.LoadTodaysEntry(ctx, a.session.UserID, nil); err != nil {
			return err
		}
	}

	var draft models.Draft
	if view.Entry != nil {
		draft = models.DraftFromEntry(*view.Entry)
		a.println(fmt.Sprintf("Editing your entry for %s. Empty answers keep the current text.", view.Date))
	} else {
		a.println(fmt.Sprintf("New entry for %s", view.Date))
	}

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Rose: what went well today?", &draft.RoseText},
		{"Bud: what are you looking forward to?", &draft.BudText},
		{"Thorn: what was hard?", &draft.ThornText},
	}
	for _, f := range fields {
		prompt := f.prompt
		if *f.dst != "" {
			prompt += "\n(current: " + *f.dst + ")"
		}
		text, err := GetMultiline(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if text != "" {
			*f.dst = text
		}
	}

	prompt := "Tags, comma separated"
	if len(draft.Tags) > 0 {
		prompt += " (current: " + strings.Join(draft.Tags, ", ") + ")"
	}
	tags, ok, err := GetTags(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if ok {
		draft.Tags = tags
	}

	public := true
	if draft.IsPublic != nil {
		public = *draft.IsPublic
	}
	if public, err = GetYesNo(a.reader, "Share with your groups?", public, a.out); err != nil {
		return err
	}
	draft.IsPublic = &public

	view, err = a.entries.SubmitEntry(ctx, a.session.UserID, draft)
	if err != nil {
		return err
	}
	a.println("Saved")
	a.printView(view)
	return nil
}

// History prints the entries kept in the local store, newest first.
func (a *App) History(ctx context.Context) error {
	list, err := a.entries.History(ctx, a.session.UserID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No entries yet")
		return nil
	}
	for _, e := range list {
		marker := ""
		if e.Pending {
			marker = " (not synced)"
		}
		a.println(fmt.Sprintf("%s%s", e.Date, marker))
		a.printEntry(e.Entry)
	}
	return nil
}

func (a *App) Tags(ctx context.Context) error {
	list, err := a.journal.Tags(ctx, a.session.UserID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No tags yet")
		return nil
	}
	for _, t := range list {
		a.println(fmt.Sprintf("%-20s %d entries", t.TagName, len(t.Entries)))
	}
	return nil
}

// Export asks for a journal dump. With a path the dump is saved there,
// otherwise the download link is printed.
func (a *App) Export(ctx context.Context, path string) error {
	res, err := a.journal.Export(ctx, a.session.UserID, path)
	if err != nil {
		return err
	}
	if path != "" {
		a.println("Journal saved to " + path)
		return nil
	}
	a.println("Download your journal:")
	a.println(res.URL)
	if !res.ExpiresAt.IsZero() {
		a.println("The link expires at " + res.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

// Package models defines the records kept in the client's local store and the
// daily view handed to the terminal UI.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
)

// CachedEntry is an entry as stored in the local store.
type CachedEntry struct {
	api.Entry
	// Pending is set while the record holds local changes the server has not
	// confirmed.
	Pending  bool
	CachedAt time.Time
}

// Draft is what the user typed for today's entry.
type Draft struct {
	RoseText  string
	BudText   string
	ThornText string
	IsPublic  *bool
	Tags      []string
}

// DraftFromEntry prefills a draft for editing an existing entry.
func DraftFromEntry(e api.Entry) Draft {
	public := e.IsPublic
	return Draft{
		RoseText:  e.RoseText,
		BudText:   e.BudText,
		ThornText: e.ThornText,
		IsPublic:  &public,
		Tags:      append([]string(nil), e.Tags...),
	}
}

// Normalize trims the texts and tags and defaults visibility to public.
func (d *Draft) Normalize() {
	d.RoseText = strings.TrimSpace(d.RoseText)
	d.BudText = strings.TrimSpace(d.BudText)
	d.ThornText = strings.TrimSpace(d.ThornText)
	d.Tags = api.NormalizeTags(d.Tags)
	if d.IsPublic == nil {
		public := true
		d.IsPublic = &public
	}
}

func (d Draft) Validate() error {
	return api.ValidateTexts(d.RoseText, d.BudText, d.ThornText)
}

func (d Draft) CreateRequest(userID string) api.CreateEntryRequest {
	return api.CreateEntryRequest{
		UserID:    userID,
		RoseText:  d.RoseText,
		BudText:   d.BudText,
		ThornText: d.ThornText,
		IsPublic:  d.IsPublic,
		Tags:      d.Tags,
	}
}

// UpdateRequest sends the whole draft, not only the changed fields.
func (d Draft) UpdateRequest() api.UpdateEntryRequest {
	rose, bud, thorn := d.RoseText, d.BudText, d.ThornText
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.UpdateEntryRequest{
		RoseText:  &rose,
		BudText:   &bud,
		ThornText: &thorn,
		IsPublic:  d.IsPublic,
		Tags:      &tags,
	}
}

// Mode is the state of today's entry session.
type Mode string

const (
	ModeUnknown     Mode = "UNKNOWN"
	ModeProvisional Mode = "PROVISIONAL"
	ModeCreate      Mode = "CREATE_MODE"
	ModeEdit        Mode = "EDIT_MODE"
)

// DailyView is the reconciled state of today's entry.
type DailyView struct {
	Mode Mode
	Date datex.Date
	// Entry is nil in create mode.
	Entry *api.Entry
	// Offline is set when the server could not be reached and the view comes
	// from the local store only.
	Offline bool
	// Duplicates lists ids of further remote entries for the same day.
	Duplicates []string
}

// HasEntry reports whether the view carries an entry with a server id.
func (v DailyView) HasEntry() bool {
	return v.Entry != nil && v.Entry.ID != ""
}

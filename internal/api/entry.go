package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
)

// Reaction kinds accepted by the server.
const (
	ReactionLike      = "like"
	ReactionLove      = "love"
	ReactionSupport   = "support"
	ReactionCelebrate = "celebrate"
)

var reactionKinds = map[string]struct{}{
	ReactionLike:      {},
	ReactionLove:      {},
	ReactionSupport:   {},
	ReactionCelebrate: {},
}

// IsReactionKind reports whether kind is one of the known reaction kinds.
func IsReactionKind(kind string) bool {
	_, ok := reactionKinds[kind]
	return ok
}

type Reaction struct {
	GroupID        string    `json:"group_id"`
	UserReactingID string    `json:"user_reacting_id"`
	ReactionKind   string    `json:"reaction_kind"`
	CreatedAt      time.Time `json:"created_at"`
}

type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Date      datex.Date `json:"date"`
	RoseText  string     `json:"rose_text"`
	BudText   string     `json:"bud_text"`
	ThornText string     `json:"thorn_text"`
	IsPublic  bool       `json:"is_public"`
	Tags      []string   `json:"tags"`
	Reactions []Reaction `json:"reactions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateEntryRequest struct {
	UserID    string   `json:"user_id"`
	RoseText  string   `json:"rose_text"`
	BudText   string   `json:"bud_text"`
	ThornText string   `json:"thorn_text"`
	IsPublic  *bool    `json:"is_public,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Normalize trims the text fields and tags and defaults visibility to public.
func (r *CreateEntryRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.RoseText = strings.TrimSpace(r.RoseText)
	r.BudText = strings.TrimSpace(r.BudText)
	r.ThornText = strings.TrimSpace(r.ThornText)
	r.Tags = NormalizeTags(r.Tags)
	if r.IsPublic == nil {
		public := true
		r.IsPublic = &public
	}
}

func (r CreateEntryRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", common.ErrValidation)
	}
	return ValidateTexts(r.RoseText, r.BudText, r.ThornText)
}

// UpdateEntryRequest is a partial update; nil fields are left unchanged.
type UpdateEntryRequest struct {
	RoseText  *string   `json:"rose_text,omitempty"`
	BudText   *string   `json:"bud_text,omitempty"`
	ThornText *string   `json:"thorn_text,omitempty"`
	IsPublic  *bool     `json:"is_public,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

func (r *UpdateEntryRequest) Normalize() {
	for _, p := range []*string{r.RoseText, r.BudText, r.ThornText} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Tags != nil {
		tags := NormalizeTags(*r.Tags)
		r.Tags = &tags
	}
}

// Validate rejects a present text field that is blank. An entry never loses
// one of its three reflections through a patch.
func (r UpdateEntryRequest) Validate() error {
	fields := []struct {
		name string
		v    *string
	}{
		{"rose_text", r.RoseText},
		{"bud_text", r.BudText},
		{"thorn_text", r.ThornText},
	}
	for _, f := range fields {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			return fmt.Errorf("%w: %s must not be empty", common.ErrValidation, f.name)
		}
	}
	return nil
}

// ValidateTexts checks that all three reflections are present.
func ValidateTexts(rose, bud, thorn string) error {
	var missing []string
	if strings.TrimSpace(rose) == "" {
		missing = append(missing, "rose_text")
	}
	if strings.TrimSpace(bud) == "" {
		missing = append(missing, "bud_text")
	}
	if strings.TrimSpace(thorn) == "" {
		missing = append(missing, "thorn_text")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", common.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeTags trims tag names, drops blanks and duplicates, and keeps the
// first-seen order. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type TogglePrivacyRequest struct {
	UserID string `json:"user_id"`
}

func (r TogglePrivacyRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", common.ErrValidation)
	}
	return nil
}

type ReactionRequest struct {
	ReactionKind string `json:"reaction_kind"`
}

func (r ReactionRequest) Validate() error {
	if !IsReactionKind(r.ReactionKind) {
		return fmt.Errorf("%w: unknown reaction_kind %q", common.ErrValidation, r.ReactionKind)
	}
	return nil
}

type Tag struct {
	ID      string   `json:"id"`
	UserID  string   `json:"user_id"`
	TagName string   `json:"tag_name"`
	Entries []string `json:"entries"`
}

type ExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

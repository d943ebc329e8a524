package models

import "github.com/dmitrijs2005/rosebudthorn/internal/api"

// ToAPI converts e to its wire form. Nil slices become empty arrays.
func (e *Entry) ToAPI() api.Entry {
	out := api.Entry{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		RoseText:  e.RoseText,
		BudText:   e.BudText,
		ThornText: e.ThornText,
		IsPublic:  e.IsPublic,
		Tags:      append([]string{}, e.Tags...),
		Reactions: make([]api.Reaction, 0, len(e.Reactions)),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	for _, r := range e.Reactions {
		out.Reactions = append(out.Reactions, api.Reaction{
			GroupID:        r.GroupID,
			UserReactingID: r.UserReactingID,
			ReactionKind:   r.ReactionKind,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out
}

func (g *Group) ToAPI() api.Group {
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		GroupCode: g.GroupCode,
		CreatedBy: g.CreatedBy,
		Members:   append([]string{}, g.Members...),
		CreatedAt: g.CreatedAt,
	}
}

func (t *Tag) ToAPI() api.Tag {
	return api.Tag{
		ID:      t.ID,
		UserID:  t.UserID,
		TagName: t.TagName,
		Entries: append([]string{}, t.Entries...),
	}
}

package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/stretchr/testify/assert"
)

func TestEntryToAPI_EmptyCollections(t *testing.T) {
	e := &Entry{ID: "e1", UserID: "u1", Date: datex.MustParse("2024-05-01"), RoseText: "a"}
	got := e.ToAPI()

	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Reactions)
	assert.Equal(t, "2024-05-01", got.Date.String())
}

func TestEntryToAPI_CopiesReactions(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &Entry{
		ID:        "e1",
		Tags:      []string{"work"},
		Reactions: []Reaction{{EntryID: "e1", GroupID: "g1", UserReactingID: "u2", ReactionKind: "love", CreatedAt: at}},
	}
	got := e.ToAPI()

	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "g1", got.Reactions[0].GroupID)
	assert.Equal(t, "u2", got.Reactions[0].UserReactingID)
	assert.Equal(t, at, got.Reactions[0].CreatedAt)

	got.Tags[0] = "changed"
	assert.Equal(t, "work", e.Tags[0])
}

func TestGroupToAPI(t *testing.T) {
	g := &Group{ID: "g1", Name: "Friends", GroupCode: "ABC123", CreatedBy: "u1", Members: []string{"u1"}}
	got := g.ToAPI()
	assert.Equal(t, "ABC123", got.GroupCode)
	assert.Equal(t, []string{"u1"}, got.Members)
}

// Package models defines the server-side records persisted in PostgreSQL.
package models

import (
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
)

type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Entry is one user's reflection for one day. Tags and Reactions are loaded
// from their own tables.
type Entry struct {
	ID        string
	UserID    string
	Date      datex.Date
	RoseText  string
	BudText   string
	ThornText string
	IsPublic  bool
	Tags      []string
	Reactions []Reaction
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reaction struct {
	EntryID        string
	GroupID        string
	UserReactingID string
	ReactionKind   string
	CreatedAt      time.Time
}

type Tag struct {
	ID      string
	UserID  string
	TagName string
	Entries []string
}

type Group struct {
	ID        string
	Name      string
	GroupCode string
	CreatedBy string
	Members   []string
	CreatedAt time.Time
}

package models

// Session is the logged-in user as persisted in the local store.
type Session struct {
	UserID       string
	UserName     string
	AccessToken  string
	RefreshToken string
}

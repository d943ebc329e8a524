package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// GroupCodeLength is the length of a shareable group code.
const GroupCodeLength = 6

// GroupCodeAlphabet is the set of characters a group code is drawn from.
const GroupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Metadata keys used by the client to persist its session.
const (
	MetaUserID       = "user_id"
	MetaUserName     = "username"
	MetaAccessToken  = "access_token"
	MetaRefreshToken = "refresh_token"
)

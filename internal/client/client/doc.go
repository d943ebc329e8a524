// Package client contains the client-side building blocks that talk to the
// outside world: the REST API client of the journal server and the bootstrap
// of the local SQLite store.
//
// # Errors
//
// Server error envelopes are mapped back to the sentinel errors of
// internal/common by their wire code, so callers match them with errors.Is.
// Transport failures and 502/503/504 answers wrap common.ErrUnavailable.
//
// # Tokens
//
// HTTPClient keeps the access and refresh token of the session. A request
// answered with code token_expired is retried once after a refresh; the new
// pair is reported through the OnTokens callback so it can be persisted.
package client

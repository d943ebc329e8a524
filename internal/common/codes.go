package common

import "errors"

// Wire error codes carried in the "code" field of the REST error envelope.
const (
	CodeValidation       = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeTokenExpired     = "token_expired"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeEditWindowClosed = "edit_window_closed"
	CodeEntryExists      = "entry_exists"
	CodeAlreadyMember    = "already_member"
	CodeGroupCodeTaken   = "group_code_taken"
	CodeUsernameTaken    = "username_taken"
	CodeInternal         = "internal_error"
)

type codeMapping struct {
	err  error
	code string
}

// Order matters: more specific errors come first.
var codeTable = []codeMapping{
	{ErrValidation, CodeValidation},
	{ErrTokenExpired, CodeTokenExpired},
	{ErrRefreshTokenExpired, CodeUnauthorized},
	{ErrInvalidToken, CodeUnauthorized},
	{ErrorUnauthorized, CodeUnauthorized},
	{ErrEditWindowClosed, CodeEditWindowClosed},
	{ErrorForbidden, CodeForbidden},
	{ErrorNotFound, CodeNotFound},
	{ErrEntryExists, CodeEntryExists},
	{ErrAlreadyMember, CodeAlreadyMember},
	{ErrGroupCodeTaken, CodeGroupCodeTaken},
	{ErrUsernameTaken, CodeUsernameTaken},
}

// CodeOf returns the wire code for err, or CodeInternal when err does not wrap
// any known sentinel.
func CodeOf(err error) string {
	for _, m := range codeTable {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return CodeInternal
}

var codeErrors = map[string]error{
	CodeValidation:       ErrValidation,
	CodeUnauthorized:     ErrorUnauthorized,
	CodeTokenExpired:     ErrTokenExpired,
	CodeForbidden:        ErrorForbidden,
	CodeNotFound:         ErrorNotFound,
	CodeEditWindowClosed: ErrEditWindowClosed,
	CodeEntryExists:      ErrEntryExists,
	CodeAlreadyMember:    ErrAlreadyMember,
	CodeGroupCodeTaken:   ErrGroupCodeTaken,
	CodeUsernameTaken:    ErrUsernameTaken,
}

// ErrorForCode is the inverse of CodeOf. Unknown codes map to ErrorInternal.
func ErrorForCode(code string) error {
	if err, ok := codeErrors[code]; ok {
		return err
	}
	return ErrorInternal
}

// Kind groups errors into the categories the client reports to the user.
type Kind string

const (
	KindNone       Kind = ""
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindConflict   Kind = "conflict"
	KindNetwork    Kind = "network"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrRefreshTokenExpired), errors.Is(err, ErrInvalidToken):
		return KindAuth
	case errors.Is(err, ErrEditWindowClosed), errors.Is(err, ErrEntryExists),
		errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrGroupCodeTaken),
		errors.Is(err, ErrUsernameTaken):
		return KindConflict
	case errors.Is(err, ErrUnavailable):
		return KindNetwork
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}

package cli

import (
	"errors"
	"io"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
)

// describeError turns err into a one-line message for the terminal.
func describeError(err error) string {
	if errors.Is(err, io.EOF) {
		return "Input closed"
	}
	switch common.KindOf(err) {
	case common.KindValidation:
		return "Invalid input: " + err.Error()
	case common.KindAuth:
		return "Not authorized: " + err.Error() + ". Please log in again"
	case common.KindNetwork:
		return "Server unavailable, try again later"
	case common.KindNotFound:
		return "Not found: " + err.Error()
	case common.KindForbidden:
		return "Not allowed: " + err.Error()
	case common.KindConflict:
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}

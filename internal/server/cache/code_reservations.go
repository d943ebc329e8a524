package cache

import (
	"context"
	"fmt"
	"time"
)

// CodeReservationTTL is how long a verified group code stays reserved for
// the user who verified it.
const CodeReservationTTL = 5 * time.Minute

// CodeReservations keeps short-lived claims on group codes so that two users
// verifying the same fresh code do not both see it as available.
type CodeReservations struct {
	store Store
	ttl   time.Duration
}

func NewCodeReservations(store Store) *CodeReservations {
	if store == nil {
		return nil
	}
	return &CodeReservations{store: store, ttl: CodeReservationTTL}
}

func codeKey(code string) string {
	return fmt.Sprintf("groupcode:%s", code)
}

// Reserve claims code for holder. It reports false when another holder has
// a live reservation. Re-reserving one's own code succeeds. A nil receiver
// always succeeds.
func (cr *CodeReservations) Reserve(ctx context.Context, code, holder string) (bool, error) {
	if cr == nil || cr.store == nil {
		return true, nil
	}
	ok, err := cr.store.SetNX(ctx, codeKey(code), []byte(holder), cr.ttl)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	current, err := cr.store.Get(ctx, codeKey(code))
	if err != nil {
		return false, err
	}
	if current == nil {
		// expired between the two calls
		return cr.store.SetNX(ctx, codeKey(code), []byte(holder), cr.ttl)
	}
	return string(current) == holder, nil
}

// Release drops the reservation on code.
func (cr *CodeReservations) Release(ctx context.Context, code string) error {
	if cr == nil || cr.store == nil {
		return nil
	}
	return cr.store.Delete(ctx, codeKey(code))
}

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"unistay-server/internal/schemas"
)

func TestTransitionAllowed(t *testing.T) {
	testCases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{schemas.BookingPending, schemas.BookingConfirmed, true},
		{schemas.BookingPending, schemas.BookingCancelled, true},
		{schemas.BookingPending, schemas.BookingCompleted, false},
		{schemas.BookingPending, schemas.BookingPending, false},
		{schemas.BookingConfirmed, schemas.BookingCompleted, true},
		{schemas.BookingConfirmed, schemas.BookingCancelled, true},
		{schemas.BookingConfirmed, schemas.BookingPending, false},
		{schemas.BookingCancelled, schemas.BookingPending, false},
		{schemas.BookingCancelled, schemas.BookingConfirmed, false},
		{schemas.BookingCompleted, schemas.BookingCancelled, false},
		{schemas.BookingCompleted, schemas.BookingConfirmed, false},
	}

	for _, tc := range testCases {
		assert.Equalf(t, tc.allowed, transitionAllowed(tc.from, tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}

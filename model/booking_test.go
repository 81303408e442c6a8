package model

import (
	"testing"
	"time"
)

func TestBooking_Resolvable(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 72 * time.Hour

	cases := []struct {
		name   string
		status BookingStatus
		now    time.Time
		want   bool
	}{
		{"pending inside window", BookingPending, created.Add(71 * time.Hour), true},
		{"pending just created", BookingPending, created, true},
		{"pending at window edge", BookingPending, created.Add(window), false},
		{"pending past window", BookingPending, created.Add(100 * time.Hour), false},
		{"already accepted", BookingAccepted, created.Add(time.Hour), false},
		{"already rejected", BookingRejected, created.Add(time.Hour), false},
		{"already expired", BookingExpired, created.Add(time.Hour), false},
	}
	for _, c := range cases {
		b := Booking{Status: c.status, Created: created}
		if got := b.Resolvable(c.now, window); got != c.want {
			t.Errorf("%s: Resolvable = %v; want %v", c.name, got, c.want)
		}
	}
}

func TestRSVP_Expired(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := RSVP{Created: created}
	window := 24 * time.Hour

	if r.Expired(created.Add(23*time.Hour), window) {
		t.Error("expired inside window")
	}
	if !r.Expired(created.Add(window), window) {
		t.Error("not expired at window edge")
	}
	if !r.Expired(created.Add(48*time.Hour), window) {
		t.Error("not expired past window")
	}
}

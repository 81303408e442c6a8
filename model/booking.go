package model

import "time"

type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingAccepted BookingStatus = "ACCEPTED"
	BookingRejected BookingStatus = "REJECTED"
	BookingExpired  BookingStatus = "EXPIRED"
)

// Booking is one reservation/order event against a thing. The thing
// type is snapshotted at creation so the booking keeps behaving per its
// original category even if the thing is edited later.
//
// Exactly one shape is populated, by category:
//
//	single-use:  no dates
//	repeatable:  DeliveryDate + Quantity
//	date-based:  StartDate + EndDate
//
// Rows are never deleted; they are the audit trail.
type Booking struct {
	Code           string        `json:"booking_code"`
	Created        time.Time     `json:"booking_created"`
	ThingCode      string        `json:"thing_code"`
	ThingType      ThingType     `json:"thing_type"`
	RequesterCode  string        `json:"requester_code"`
	RequesterEmail string        `json:"requester_email"`
	OwnerCode      string        `json:"owner_code"`
	StartDate      *time.Time    `json:"start_date,omitempty"`
	EndDate        *time.Time    `json:"end_date,omitempty"`
	DeliveryDate   *time.Time    `json:"delivery_date,omitempty"`
	Quantity       *int          `json:"quantity,omitempty"`
	Status         BookingStatus `json:"status"`
}

// Resolvable reports whether the booking can still be accepted or
// rejected: still PENDING and younger than the expiry window.
func (b *Booking) Resolvable(now time.Time, window time.Duration) bool {
	return b.Status == BookingPending && now.Before(b.Created.Add(window))
}

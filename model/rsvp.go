package model

import "time"

type RSVPAction string

const (
	ActionMagicLink        RSVPAction = "MAGIC_LINK"
	ActionCollectionInvite RSVPAction = "COLLECTION_INVITE"
	ActionBookingAccept    RSVPAction = "BOOKING_ACCEPT"
	ActionBookingReject    RSVPAction = "BOOKING_REJECT"
)

// RSVP is a one-time action token. Every link that leaves the system in
// an email carries an RSVP code; real entity codes never appear in URLs.
// Tokens are deleted on first successful use and on detected expiry.
type RSVP struct {
	Code      string     `json:"rsvp_code"`
	Created   time.Time  `json:"rsvp_created"`
	UserCode  string     `json:"user_code"`
	UserEmail string     `json:"user_email"`
	Action    RSVPAction `json:"rsvp_action"`
	// TargetCode points at the entity the action applies to, e.g. a
	// booking code for BOOKING_ACCEPT/REJECT.
	TargetCode string `json:"rsvp_target_code,omitempty"`
	// CollectionCode is kept separate from TargetCode for collection
	// invites (legacy shape preserved from the first invite flow).
	CollectionCode string `json:"collection_code,omitempty"`
	// Context carries free-form data for email rendering (dates,
	// quantity, requester).
	Context map[string]any `json:"rsvp_context,omitempty"`
}

func (r *RSVP) Expired(now time.Time, window time.Duration) bool {
	return !now.Before(r.Created.Add(window))
}

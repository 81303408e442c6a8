package rsvp

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oiueei/oiueei/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrUnauthorized ErrCode = "UNAUTHORIZED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Insert(ctx context.Context, r *model.RSVP) error
	ByCode(ctx context.Context, rsvpCode string) (*model.RSVP, error)
	Delete(ctx context.Context, rsvpCode string) error
}

// Service issues and consumes one-time action tokens. It is a dumb
// envelope: dispatch on the action kind belongs to the auth gateway and
// the booking engine.
type Service interface {
	Issue(ctx context.Context, r *model.RSVP) (*model.RSVP, error)
	IssueForBooking(ctx context.Context, action model.RSVPAction, b *model.Booking, ownerEmail string) (*model.RSVP, error)

	// ValidateAndFetch fails with UNAUTHORIZED when the code is unknown
	// or expired; an expired row is deleted on detection.
	ValidateAndFetch(ctx context.Context, rsvpCode string) (*model.RSVP, error)

	// Consume deletes the token. Called exactly once per successful
	// resolution; never on a validation failure other than expiry.
	Consume(ctx context.Context, rsvpCode string) error
}

type service struct {
	r      Repo
	expiry time.Duration
	now    func() time.Time
}

func New(r Repo, expiry time.Duration) Service {
	return &service{r: r, expiry: expiry, now: time.Now}
}

func (s *service) Issue(ctx context.Context, rv *model.RSVP) (*model.RSVP, error) {
	if rv.Action == "" {
		rv.Action = model.ActionMagicLink
	}
	if err := s.r.Insert(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// IssueForBooking snapshots the booking context the owner needs to see
// in the accept/reject email. The token is addressed to the owner.
func (s *service) IssueForBooking(ctx context.Context, action model.RSVPAction, b *model.Booking, ownerEmail string) (*model.RSVP, error) {
	payload := map[string]any{
		"thing_code":      b.ThingCode,
		"thing_type":      string(b.ThingType),
		"requester_code":  b.RequesterCode,
		"requester_email": b.RequesterEmail,
	}
	if b.StartDate != nil {
		payload["start_date"] = b.StartDate.Format("2006-01-02")
	}
	if b.EndDate != nil {
		payload["end_date"] = b.EndDate.Format("2006-01-02")
	}
	if b.DeliveryDate != nil {
		payload["delivery_date"] = b.DeliveryDate.Format("2006-01-02")
	}
	if b.Quantity != nil {
		payload["quantity"] = *b.Quantity
	}
	return s.Issue(ctx, &model.RSVP{
		UserCode:   b.OwnerCode,
		UserEmail:  ownerEmail,
		Action:     action,
		TargetCode: b.Code,
		Context:    payload,
	})
}

func (s *service) ValidateAndFetch(ctx context.Context, rsvpCode string) (*model.RSVP, error) {
	rv, err := s.r.ByCode(ctx, rsvpCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, codedError{code: ErrUnauthorized}
		}
		return nil, err
	}
	if rv.Expired(s.now(), s.expiry) {
		// One-time semantics include expiry: the row is gone after the
		// first access past the window.
		if err := s.r.Delete(ctx, rv.Code); err != nil {
			return nil, err
		}
		return nil, codedError{code: ErrUnauthorized}
	}
	return rv, nil
}

func (s *service) Consume(ctx context.Context, rsvpCode string) error {
	return s.r.Delete(ctx, rsvpCode)
}

package booking

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrValidation     ErrCode = "VALIDATION"
	ErrInvalidRequest ErrCode = "INVALID_REQUEST"
	ErrConflict       ErrCode = "CONFLICT"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode, msg string) error {
	return codedError{code: c, msg: msg}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const dateLayout = "2006-01-02"

// dto

// CreateRequest is the raw payload of POST /things/{code}/request.
// Which fields matter is decided by the thing's type category.
type CreateRequest struct {
	StartDate    string
	EndDate      string
	DeliveryDate string
	Quantity     int
}

// Requester identifies the authenticated caller.
type Requester struct {
	Code  string
	Email string
}

// Resolution is what an accept/reject RSVP resolves to, echoed back for
// message rendering.
type Resolution struct {
	Action        model.RSVPAction
	Message       string
	ThingHeadline string
	StartDate     *time.Time
	EndDate       *time.Time
	DeliveryDate  *time.Time
	Quantity      *int
}

type Repo interface {
	InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	HasOverlapTx(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error)
	HasPendingByRequesterTx(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error)
	SetStatus(ctx context.Context, tx *sql.Tx, bookingCode string, status model.BookingStatus) error
	BlockedPeriods(ctx context.Context, thingCode string) ([]model.Booking, error)
	ListByRequester(ctx context.Context, requesterCode string) ([]model.Booking, error)
	ListByOwner(ctx context.Context, ownerCode string) ([]model.Booking, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type ThingRepo interface {
	ByCode(ctx context.Context, thingCode string) (*model.Thing, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error)
	SetStatus(ctx context.Context, tx *sql.Tx, thingCode string, status model.ThingStatus) error
	MarkDealt(ctx context.Context, tx *sql.Tx, thingCode, userCode string) error
	CanView(ctx context.Context, thingCode, userCode string) (bool, error)
}

type UserRepo interface {
	ByCode(ctx context.Context, userCode string) (*model.User, error)
}

// TokenIssuer is the slice of the RSVP service the engine needs.
type TokenIssuer interface {
	IssueForBooking(ctx context.Context, action model.RSVPAction, b *model.Booking, ownerEmail string) (*model.RSVP, error)
	Consume(ctx context.Context, rsvpCode string) error
}

type Service interface {
	// CreateRequest validates a reservation/order request and creates
	// the booking with the shape of its type category, then emails the
	// owner accept/reject links.
	CreateRequest(ctx context.Context, thingCode string, req Requester, payload CreateRequest) (*model.Booking, error)

	// Resolve applies a BOOKING_ACCEPT / BOOKING_REJECT token. The
	// token must already have passed its own expiry gate; the booking's
	// own window is checked here, independently.
	Resolve(ctx context.Context, rv *model.RSVP) (*Resolution, error)

	// BlockedPeriods lists PENDING/ACCEPTED bookings for the calendar,
	// ordered by start date. ownerView tells the controller which
	// projection to render.
	BlockedPeriods(ctx context.Context, thingCode, userCode string) (periods []model.Booking, ownerView bool, err error)

	MyBookings(ctx context.Context, userCode string) ([]model.Booking, error)
	OwnerBookings(ctx context.Context, userCode string) ([]model.Booking, error)
}

// ----- Service implementation -----

type service struct {
	db     *sql.DB
	b      Repo
	t      ThingRepo
	u      UserRepo
	tokens TokenIssuer
	mail   mailer.Mailer
	log    *slog.Logger

	window   time.Duration // booking expiry window
	rsvpBase string        // base URL for RSVP links in emails
	now      func() time.Time
}

func New(db *sql.DB, b Repo, t ThingRepo, u UserRepo, tokens TokenIssuer, mail mailer.Mailer, log *slog.Logger, window time.Duration, rsvpBase string) Service {
	return &service{
		db: db, b: b, t: t, u: u, tokens: tokens, mail: mail, log: log,
		window: window, rsvpBase: rsvpBase, now: time.Now,
	}
}

func (s *service) CreateRequest(ctx context.Context, thingCode string, req Requester, payload CreateRequest) (b *model.Booking, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the thing row first so the availability and overlap checks
	// below cannot race a concurrent request for the same thing.
	thing, err := s.t.GetForUpdate(ctx, tx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound, "thing not found")
		}
		return nil, err
	}

	if !thing.IsOwner(req.Code) {
		ok, verr := s.t.CanView(ctx, thingCode, req.Code)
		if verr != nil {
			return nil, verr
		}
		if !ok {
			return nil, makeErr(ErrForbidden, "not authorized to request this thing")
		}
	}
	if thing.IsOwner(req.Code) {
		return nil, makeErr(ErrInvalidRequest, "cannot request your own thing")
	}
	if thing.Status != model.ThingActive {
		return nil, makeErr(ErrInvalidRequest, "thing is not available for reservation")
	}

	b = &model.Booking{
		ThingCode:      thing.Code,
		ThingType:      thing.Type,
		RequesterCode:  req.Code,
		RequesterEmail: req.Email,
		OwnerCode:      thing.Owner,
	}

	switch model.CategoryOf(thing.Type) {
	case model.CategoryDateBased:
		if err = s.fillDateBased(ctx, tx, b, payload); err != nil {
			return nil, err
		}
		// Thing stays ACTIVE: disjoint ranges may coexist.

	case model.CategoryRepeatable:
		if err = s.fillOrder(b, payload); err != nil {
			return nil, err
		}
		// Thing stays ACTIVE: orders do not consume exclusivity.

	case model.CategorySingleUse:
		var pending bool
		pending, err = s.b.HasPendingByRequesterTx(ctx, tx, thing.Code, req.Code)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, makeErr(ErrInvalidRequest, "you already have a pending request for this thing")
		}

	default:
		return nil, makeErr(ErrValidation, "unknown thing type")
	}

	if err = s.b.InsertTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if model.CategoryOf(thing.Type) == model.CategorySingleUse {
		// TAKEN blocks everyone else until the owner resolves it.
		if err = s.t.SetStatus(ctx, tx, thing.Code, model.ThingTaken); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	// Past this point the booking is committed; token issuance and
	// email are side effects that must not undo it.
	owner, err := s.u.ByCode(ctx, thing.Owner)
	if err != nil {
		s.log.Error("owner lookup after booking commit", "booking", b.Code, "owner", thing.Owner, "err", err)
		return b, nil
	}
	s.notifyOwner(ctx, thing, b, owner)

	return b, nil
}

func (s *service) fillDateBased(ctx context.Context, tx *sql.Tx, b *model.Booking, payload CreateRequest) error {
	start, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		return makeErr(ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		return makeErr(ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return makeErr(ErrValidation, "end_date must not be before start_date")
	}
	if start.Before(today(s.now())) {
		return makeErr(ErrValidation, "start_date must not be in the past")
	}

	overlap, err := s.b.HasOverlapTx(ctx, tx, b.ThingCode, start, end)
	if err != nil {
		return err
	}
	if overlap {
		return makeErr(ErrConflict, "selected dates overlap with an existing booking")
	}

	b.StartDate, b.EndDate = &start, &end
	return nil
}

func (s *service) fillOrder(b *model.Booking, payload CreateRequest) error {
	delivery, err := time.Parse(dateLayout, payload.DeliveryDate)
	if err != nil {
		return makeErr(ErrValidation, "delivery_date must be YYYY-MM-DD")
	}
	if delivery.Before(today(s.now())) {
		return makeErr(ErrValidation, "delivery_date must not be in the past")
	}
	if payload.Quantity < 1 {
		return makeErr(ErrValidation, "quantity must be at least 1")
	}
	qty := payload.Quantity
	b.DeliveryDate, b.Quantity = &delivery, &qty
	return nil
}

// today truncates to a UTC calendar date so date-only comparisons line
// up with the DATE columns.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Resolve(ctx context.Context, rv *model.RSVP) (res *Resolution, err error) {
	accept := rv.Action == model.ActionBookingAccept

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.b.GetForUpdate(ctx, tx, rv.TargetCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.consume(ctx, rv.Code)
			return nil, makeErr(ErrNotFound, "booking not found")
		}
		return nil, err
	}

	// The booking's own window, independent of the token's expiry.
	if !b.Resolvable(s.now(), s.window) {
		s.consume(ctx, rv.Code)
		return nil, makeErr(ErrInvalidRequest, "booking expired or already processed")
	}

	thing, err := s.t.GetForUpdate(ctx, tx, b.ThingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.consume(ctx, rv.Code)
			return nil, makeErr(ErrNotFound, "thing not found")
		}
		return nil, err
	}

	if accept {
		if err = s.b.SetStatus(ctx, tx, b.Code, model.BookingAccepted); err != nil {
			return nil, err
		}
		if model.CategoryOf(b.ThingType) == model.CategorySingleUse {
			if err = s.t.MarkDealt(ctx, tx, thing.Code, b.RequesterCode); err != nil {
				return nil, err
			}
		}
	} else {
		if err = s.b.SetStatus(ctx, tx, b.Code, model.BookingRejected); err != nil {
			return nil, err
		}
		if model.CategoryOf(b.ThingType) == model.CategorySingleUse {
			// Free the thing for other requesters again.
			if err = s.t.SetStatus(ctx, tx, thing.Code, model.ThingActive); err != nil {
				return nil, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.consume(ctx, rv.Code)
	s.notifyRequester(ctx, thing, b, accept)

	res = &Resolution{
		Action:        rv.Action,
		ThingHeadline: thing.Headline,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		DeliveryDate:  b.DeliveryDate,
		Quantity:      b.Quantity,
	}
	if accept {
		res.Message = "Booking accepted"
	} else {
		res.Message = "Booking rejected"
	}
	return res, nil
}

// consume is best-effort: a leftover token is only a row the next sweep
// of its expiry window would have removed anyway.
func (s *service) consume(ctx context.Context, rsvpCode string) {
	if err := s.tokens.Consume(ctx, rsvpCode); err != nil {
		s.log.Error("rsvp consume failed", "rsvp", rsvpCode, "err", err)
	}
}

func (s *service) BlockedPeriods(ctx context.Context, thingCode, userCode string) ([]model.Booking, bool, error) {
	thing, err := s.t.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, makeErr(ErrNotFound, "thing not found")
		}
		return nil, false, err
	}

	owner := thing.IsOwner(userCode)
	if !owner {
		ok, err := s.t.CanView(ctx, thingCode, userCode)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, makeErr(ErrForbidden, "not authorized to view this thing")
		}
	}

	periods, err := s.b.BlockedPeriods(ctx, thingCode)
	if err != nil {
		return nil, false, err
	}
	return periods, owner, nil
}

func (s *service) MyBookings(ctx context.Context, userCode string) ([]model.Booking, error) {
	return s.b.ListByRequester(ctx, userCode)
}

func (s *service) OwnerBookings(ctx context.Context, userCode string) ([]model.Booking, error) {
	return s.b.ListByOwner(ctx, userCode)
}

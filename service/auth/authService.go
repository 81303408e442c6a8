package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"
	booking "github.com/oiueei/oiueei/service/booking"
	jwtutil "github.com/oiueei/oiueei/util/jwt"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrUnauthorized ErrCode = "UNAUTHORIZED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// VerifyResult is the response of resolving any RSVP token: a session
// for login-like actions, a booking resolution for booking actions.
type VerifyResult struct {
	Action            model.RSVPAction
	Token             string
	User              *model.User
	InvitedCollection string
	Booking           *booking.Resolution
}

type UserRepo interface {
	ByCode(ctx context.Context, userCode string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	TouchActivity(ctx context.Context, userCode string) error
}

type Tokens interface {
	Issue(ctx context.Context, r *model.RSVP) (*model.RSVP, error)
	ValidateAndFetch(ctx context.Context, rsvpCode string) (*model.RSVP, error)
	Consume(ctx context.Context, rsvpCode string) error
}

type Invites interface {
	AcceptInvite(ctx context.Context, rv *model.RSVP) (string, error)
}

type BookingResolver interface {
	Resolve(ctx context.Context, rv *model.RSVP) (*booking.Resolution, error)
}

type Service interface {
	// RequestLink emails a magic login link. Invite-only: unknown
	// addresses are refused, not signed up.
	RequestLink(ctx context.Context, email string) error

	// VerifyRSVP is the unified handler behind GET /rsvp/{code}; it
	// dispatches on the token's action kind.
	VerifyRSVP(ctx context.Context, rsvpCode string) (*VerifyResult, error)

	Me(ctx context.Context, userCode string) (*model.User, error)
}

type service struct {
	u    UserRepo
	tok  Tokens
	inv  Invites
	bk   BookingResolver
	mail mailer.Mailer
	log  *slog.Logger

	jwtSecret     string
	sessionTTL    int // hours
	magicLinkBase string
}

func New(u UserRepo, tok Tokens, inv Invites, bk BookingResolver, mail mailer.Mailer, log *slog.Logger, jwtSecret string, sessionTTL int, magicLinkBase string) Service {
	return &service{u: u, tok: tok, inv: inv, bk: bk, mail: mail, log: log,
		jwtSecret: jwtSecret, sessionTTL: sessionTTL, magicLinkBase: magicLinkBase}
}

func (s *service) RequestLink(ctx context.Context, email string) error {
	u, err := s.u.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("magic link denied for unknown email", "email", email)
			return makeErr(ErrNotFound)
		}
		return err
	}

	rv, err := s.tok.Issue(ctx, &model.RSVP{
		UserCode:  u.Code,
		UserEmail: u.Email,
		Action:    model.ActionMagicLink,
	})
	if err != nil {
		return err
	}

	link := s.magicLinkBase + "/" + rv.Code
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Your sign-in link",
		Text:    fmt.Sprintf("Hi! Click here to sign in: %s", link),
		HTML: fmt.Sprintf(`<html>
<p>Hi! Click here to sign in:</p>
<a href="%s">Sign in</a>
</html>`, link),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("magic link email failed", "to", u.Email, "err", err)
	}
	return nil
}

func (s *service) VerifyRSVP(ctx context.Context, rsvpCode string) (*VerifyResult, error) {
	rv, err := s.tok.ValidateAndFetch(ctx, rsvpCode)
	if err != nil {
		return nil, err
	}

	switch rv.Action {
	case model.ActionBookingAccept, model.ActionBookingReject:
		res, err := s.bk.Resolve(ctx, rv)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Action: rv.Action, Booking: res}, nil

	case model.ActionCollectionInvite:
		return s.login(ctx, rv, true)

	default:
		return s.login(ctx, rv, false)
	}
}

// login turns a verified magic-link or invite token into a session.
func (s *service) login(ctx context.Context, rv *model.RSVP, withInvite bool) (*VerifyResult, error) {
	u, err := s.u.ByCode(ctx, rv.UserCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.tok.Consume(ctx, rv.Code)
			return nil, makeErr(ErrUnauthorized)
		}
		return nil, err
	}

	if err := s.u.TouchActivity(ctx, u.Code); err != nil {
		s.log.Error("touch activity failed", "user", u.Code, "err", err)
	}

	res := &VerifyResult{Action: rv.Action, User: u}
	if withInvite {
		col, err := s.inv.AcceptInvite(ctx, rv)
		if err != nil {
			return nil, err
		}
		res.InvitedCollection = col
	}

	token, err := jwtutil.Issue(s.jwtSecret, u.Code, u.Email, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	res.Token = token

	if err := s.tok.Consume(ctx, rv.Code); err != nil {
		return nil, err
	}
	s.log.Info("user logged in via rsvp", "user", u.Code, "action", rv.Action)
	return res, nil
}

func (s *service) Me(ctx context.Context, userCode string) (*model.User, error) {
	u, err := s.u.ByCode(ctx, userCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oiueei/oiueei/model"
	crepo "github.com/oiueei/oiueei/repository/collection"
	"github.com/oiueei/oiueei/repository/mailer"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrForbidden  ErrCode = "FORBIDDEN"
	ErrValidation ErrCode = "VALIDATION"
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

// dto

type CreateCollection struct {
	Headline    string
	Description string
	Thumbnail   string
	Hero        string
	ThemeCode   string
}

type UpdateCollection struct {
	Headline    string
	Description string
	Thumbnail   string
	Hero        string
	Status      *model.CollectionStatus
	ThemeCode   string
}

type Repo = crepo.Repo

type UserRepo interface {
	ByCode(ctx context.Context, userCode string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type ThingRepo interface {
	ByCode(ctx context.Context, thingCode string) (*model.Thing, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, r *model.RSVP) (*model.RSVP, error)
}

type Service interface {
	Create(ctx context.Context, ownerCode string, in CreateCollection) (*model.Collection, error)
	Get(ctx context.Context, collectionCode, userCode string) (*model.Collection, error)
	ListOwn(ctx context.Context, ownerCode string) ([]model.Collection, error)
	ListInvited(ctx context.Context, userCode string) ([]model.Collection, error)
	Update(ctx context.Context, collectionCode, userCode string, in UpdateCollection) (*model.Collection, error)
	Delete(ctx context.Context, collectionCode, userCode string) error

	AddThing(ctx context.Context, collectionCode, userCode, thingCode string) error
	RemoveThing(ctx context.Context, collectionCode, userCode, thingCode string) error

	// Invite emails a one-time RSVP link. Unknown emails get a fresh
	// account (invite-only signup happens here); membership itself is
	// granted when the link is resolved.
	Invite(ctx context.Context, collectionCode, ownerCode, email string) error

	// AcceptInvite grants membership for a resolved COLLECTION_INVITE
	// token. Called by the auth gateway.
	AcceptInvite(ctx context.Context, rv *model.RSVP) (collectionCode string, err error)
}

type service struct {
	r    Repo
	u    UserRepo
	t    ThingRepo
	tok  TokenIssuer
	mail mailer.Mailer
	log  *slog.Logger

	rsvpBase     string
	defaultTheme string
}

func New(r Repo, u UserRepo, t ThingRepo, tok TokenIssuer, mail mailer.Mailer, log *slog.Logger, rsvpBase, defaultTheme string) Service {
	return &service{r: r, u: u, t: t, tok: tok, mail: mail, log: log,
		rsvpBase: rsvpBase, defaultTheme: defaultTheme}
}

func (s *service) Create(ctx context.Context, ownerCode string, in CreateCollection) (*model.Collection, error) {
	if in.Headline == "" {
		return nil, makeErr(ErrValidation)
	}
	theme := in.ThemeCode
	if theme == "" {
		theme = s.defaultTheme
	}
	c := &model.Collection{
		Owner:       ownerCode,
		Headline:    in.Headline,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Hero:        in.Hero,
		ThemeCode:   theme,
	}
	if err := s.r.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, collectionCode, userCode string) (*model.Collection, error) {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return nil, err
	}
	if !c.CanView(userCode) {
		return nil, makeErr(ErrForbidden)
	}
	return c, nil
}

func (s *service) byCode(ctx context.Context, collectionCode string) (*model.Collection, error) {
	c, err := s.r.ByCode(ctx, collectionCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) ListOwn(ctx context.Context, ownerCode string) ([]model.Collection, error) {
	return s.r.ListByOwner(ctx, ownerCode)
}

func (s *service) ListInvited(ctx context.Context, userCode string) ([]model.Collection, error) {
	return s.r.ListByInvitee(ctx, userCode)
}

func (s *service) Update(ctx context.Context, collectionCode, userCode string, in UpdateCollection) (*model.Collection, error) {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return nil, err
	}
	if !c.IsOwner(userCode) {
		return nil, makeErr(ErrForbidden)
	}
	// Partial update: omitted fields keep their stored values.
	if in.Headline != "" {
		c.Headline = in.Headline
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Thumbnail != "" {
		c.Thumbnail = in.Thumbnail
	}
	if in.Hero != "" {
		c.Hero = in.Hero
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.ThemeCode != "" {
		c.ThemeCode = in.ThemeCode
	}
	if err := s.r.UpdateInfo(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, collectionCode, userCode string) error {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return err
	}
	if !c.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	return s.r.Delete(ctx, collectionCode)
}

func (s *service) AddThing(ctx context.Context, collectionCode, userCode, thingCode string) error {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return err
	}
	if !c.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	t, err := s.t.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	// Only the owner's own things can be listed in their collections.
	if !t.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	return s.r.AddThing(ctx, collectionCode, thingCode)
}

func (s *service) RemoveThing(ctx context.Context, collectionCode, userCode, thingCode string) error {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return err
	}
	if !c.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	return s.r.RemoveThing(ctx, collectionCode, thingCode)
}

func (s *service) Invite(ctx context.Context, collectionCode, ownerCode, email string) error {
	c, err := s.byCode(ctx, collectionCode)
	if err != nil {
		return err
	}
	if !c.IsOwner(ownerCode) {
		return makeErr(ErrForbidden)
	}

	invitee, err := s.u.ByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		invitee = &model.User{Email: email}
		err = s.u.Create(ctx, invitee)
	}
	if err != nil {
		return err
	}

	rv, err := s.tok.Issue(ctx, &model.RSVP{
		UserCode:       invitee.Code,
		UserEmail:      invitee.Email,
		Action:         model.ActionCollectionInvite,
		CollectionCode: c.Code,
	})
	if err != nil {
		return err
	}

	link := s.rsvpBase + "/" + rv.Code
	msg := mailer.Message{
		To:      invitee.Email,
		Subject: fmt.Sprintf("You are invited to view: %s", c.Headline),
		Text:    fmt.Sprintf("You have been invited to '%s'. Open your invitation: %s", c.Headline, link),
		HTML: fmt.Sprintf(`<html>
<p>You have been invited to <strong>%s</strong>.</p>
<p><a href="%s">Open your invitation</a></p>
</html>`, c.Headline, link),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("invite email failed", "collection", c.Code, "to", invitee.Email, "err", err)
	}
	return nil
}

func (s *service) AcceptInvite(ctx context.Context, rv *model.RSVP) (string, error) {
	if rv.CollectionCode == "" {
		return "", nil
	}
	_, err := s.r.ByCode(ctx, rv.CollectionCode)
	if err != nil {
		// The collection was deleted since the invite went out; the
		// login itself still succeeds.
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if err := s.r.AddInvite(ctx, rv.CollectionCode, rv.UserCode); err != nil {
		return "", err
	}
	return rv.CollectionCode, nil
}

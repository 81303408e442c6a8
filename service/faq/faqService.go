package faq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oiueei/oiueei/model"
	frepo "github.com/oiueei/oiueei/repository/faq"
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

type Repo = frepo.Repo

type ThingRepo interface {
	ByCode(ctx context.Context, thingCode string) (*model.Thing, error)
	CanView(ctx context.Context, thingCode, userCode string) (bool, error)
}

type UserRepo interface {
	ByCode(ctx context.Context, userCode string) (*model.User, error)
}

type Service interface {
	Ask(ctx context.Context, thingCode, userCode, question string) (*model.FAQ, error)
	Get(ctx context.Context, faqCode, userCode string) (*model.FAQ, error)
	// ListForThing hides invisible entries from everyone but the owner.
	ListForThing(ctx context.Context, thingCode, userCode string) ([]model.FAQ, error)
	// Answer is owner-only; the questioner is emailed the answer.
	Answer(ctx context.Context, faqCode, userCode, answer string) (*model.FAQ, error)
	SetVisible(ctx context.Context, faqCode, userCode string, visible bool) error
}

type service struct {
	r    Repo
	t    ThingRepo
	u    UserRepo
	mail mailer.Mailer
	log  *slog.Logger
}

func New(r Repo, t ThingRepo, u UserRepo, mail mailer.Mailer, log *slog.Logger) Service {
	return &service{r: r, t: t, u: u, mail: mail, log: log}
}

func (s *service) Ask(ctx context.Context, thingCode, userCode, question string) (*model.FAQ, error) {
	if question == "" {
		return nil, makeErr(ErrValidation)
	}
	t, err := s.thing(ctx, thingCode)
	if err != nil {
		return nil, err
	}
	if !t.IsOwner(userCode) {
		ok, err := s.t.CanView(ctx, thingCode, userCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, makeErr(ErrForbidden)
		}
	}
	f := &model.FAQ{ThingCode: thingCode, Questioner: userCode, Question: question}
	if err := s.r.Insert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) Get(ctx context.Context, faqCode, userCode string) (*model.FAQ, error) {
	f, err := s.r.ByCode(ctx, faqCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !f.Visible {
		t, err := s.thing(ctx, f.ThingCode)
		if err != nil {
			return nil, err
		}
		if !t.IsOwner(userCode) {
			return nil, makeErr(ErrNotFound)
		}
	}
	return f, nil
}

func (s *service) ListForThing(ctx context.Context, thingCode, userCode string) ([]model.FAQ, error) {
	t, err := s.thing(ctx, thingCode)
	if err != nil {
		return nil, err
	}
	if t.IsOwner(userCode) {
		return s.r.ListByThing(ctx, thingCode, true)
	}
	ok, err := s.t.CanView(ctx, thingCode, userCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListByThing(ctx, thingCode, false)
}

func (s *service) Answer(ctx context.Context, faqCode, userCode, answer string) (*model.FAQ, error) {
	if answer == "" {
		return nil, makeErr(ErrValidation)
	}
	f, err := s.r.ByCode(ctx, faqCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	t, err := s.thing(ctx, f.ThingCode)
	if err != nil {
		return nil, err
	}
	if !t.IsOwner(userCode) {
		return nil, makeErr(ErrForbidden)
	}
	if err := s.r.SetAnswer(ctx, faqCode, answer); err != nil {
		return nil, err
	}
	f.Answer = answer

	if q, err := s.u.ByCode(ctx, f.Questioner); err == nil {
		msg := mailer.Message{
			To:      q.Email,
			Subject: fmt.Sprintf("Your question about '%s' was answered", t.Headline),
			Text:    fmt.Sprintf("Q: %s\nA: %s", f.Question, f.Answer),
			HTML: fmt.Sprintf(`<html>
<p><strong>Q:</strong> %s</p>
<p><strong>A:</strong> %s</p>
</html>`, f.Question, f.Answer),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			s.log.Error("faq answer email failed", "faq", f.Code, "to", q.Email, "err", err)
		}
	}
	return f, nil
}

func (s *service) SetVisible(ctx context.Context, faqCode, userCode string, visible bool) error {
	f, err := s.r.ByCode(ctx, faqCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	t, err := s.thing(ctx, f.ThingCode)
	if err != nil {
		return err
	}
	if !t.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	return s.r.SetVisible(ctx, faqCode, visible)
}

func (s *service) thing(ctx context.Context, thingCode string) (*model.Thing, error) {
	t, err := s.t.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

package thing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oiueei/oiueei/model"
	trepo "github.com/oiueei/oiueei/repository/thing"
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

type CreateThing struct {
	Type        model.ThingType
	Headline    string
	Description string
	Thumbnail   string
	Fee         *float64
	// CollectionCode optionally files the new thing into one of the
	// owner's collections in the same call.
	CollectionCode string
}

type UpdateThing struct {
	Headline    string
	Description string
	Thumbnail   string
	Fee         *float64
	// Status/Available are honored only while no booking exists for the
	// thing; after that the booking engine owns both fields.
	Status    *model.ThingStatus
	Available *bool
}

type Repo = trepo.Repo

type CollectionRepo interface {
	ByCode(ctx context.Context, collectionCode string) (*model.Collection, error)
	AddThing(ctx context.Context, collectionCode, thingCode string) error
}

type Service interface {
	Create(ctx context.Context, ownerCode string, in CreateThing) (*model.Thing, error)
	Get(ctx context.Context, thingCode, userCode string) (*model.Thing, error)
	ListOwn(ctx context.Context, ownerCode string) ([]model.Thing, error)
	ListInvited(ctx context.Context, userCode string) ([]model.Thing, error)
	Update(ctx context.Context, thingCode, userCode string, in UpdateThing) (*model.Thing, error)
	Delete(ctx context.Context, thingCode, userCode string) error

	// Reserve/Release maintain the deal list directly (the pre-booking
	// reservation flow kept for owner bookkeeping).
	Reserve(ctx context.Context, thingCode, userCode string) error
	Release(ctx context.Context, thingCode, userCode string) error
}

type service struct {
	r Repo
	c CollectionRepo
}

func New(r Repo, c CollectionRepo) Service { return &service{r: r, c: c} }

func (s *service) Create(ctx context.Context, ownerCode string, in CreateThing) (*model.Thing, error) {
	if in.Headline == "" || model.CategoryOf(in.Type) == model.CategoryUnknown {
		return nil, makeErr(ErrValidation)
	}
	t := &model.Thing{
		Type:        in.Type,
		Owner:       ownerCode,
		Headline:    in.Headline,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Fee:         in.Fee,
	}
	if err := s.r.Insert(ctx, t); err != nil {
		return nil, err
	}

	if in.CollectionCode != "" {
		col, err := s.c.ByCode(ctx, in.CollectionCode)
		// A vanished or foreign collection is ignored, the thing is
		// still created.
		if err == nil && col.IsOwner(ownerCode) {
			_ = s.c.AddThing(ctx, col.Code, t.Code)
		}
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, thingCode, userCode string) (*model.Thing, error) {
	t, err := s.r.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !t.IsOwner(userCode) {
		ok, err := s.r.CanView(ctx, thingCode, userCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, makeErr(ErrForbidden)
		}
	}
	return t, nil
}

func (s *service) ListOwn(ctx context.Context, ownerCode string) ([]model.Thing, error) {
	return s.r.ListByOwner(ctx, ownerCode)
}

func (s *service) ListInvited(ctx context.Context, userCode string) ([]model.Thing, error) {
	return s.r.ListInvitedVisible(ctx, userCode)
}

func (s *service) Update(ctx context.Context, thingCode, userCode string, in UpdateThing) (*model.Thing, error) {
	t, err := s.r.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !t.IsOwner(userCode) {
		return nil, makeErr(ErrForbidden)
	}

	// Partial update: omitted fields keep their stored values.
	if in.Headline != "" {
		t.Headline = in.Headline
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.Thumbnail != "" {
		t.Thumbnail = in.Thumbnail
	}
	if in.Fee != nil {
		t.Fee = in.Fee
	}
	if err := s.r.UpdateInfo(ctx, t); err != nil {
		return nil, err
	}

	if in.Status != nil || in.Available != nil {
		status := t.Status
		if in.Status != nil {
			status = *in.Status
		}
		available := t.Available
		if in.Available != nil {
			available = *in.Available
		}
		// Silently skipped once any booking exists; status is then
		// driven by accept/reject transitions only.
		if applied, err := s.r.SetStatusUnbooked(ctx, thingCode, status, available); err != nil {
			return nil, err
		} else if applied {
			t.Status, t.Available = status, available
		}
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, thingCode, userCode string) error {
	t, err := s.r.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !t.IsOwner(userCode) {
		return makeErr(ErrForbidden)
	}
	return s.r.Delete(ctx, thingCode)
}

func (s *service) Reserve(ctx context.Context, thingCode, userCode string) error {
	t, err := s.r.ByCode(ctx, thingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if t.IsOwner(userCode) {
		return makeErr(ErrValidation)
	}
	ok, err := s.r.CanView(ctx, thingCode, userCode)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrForbidden)
	}
	return s.r.AddDeal(ctx, thingCode, userCode)
}

func (s *service) Release(ctx context.Context, thingCode, userCode string) error {
	if _, err := s.r.ByCode(ctx, thingCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return s.r.RemoveDeal(ctx, thingCode, userCode)
}

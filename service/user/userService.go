package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oiueei/oiueei/model"
	urepo "github.com/oiueei/oiueei/repository/user"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
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

type Repo = urepo.Repo

// UpdateProfile carries the caller-editable fields. Omitted fields
// keep their stored values.
type UpdateProfile struct {
	Name      string
	Headline  string
	Thumbnail string
}

type Service interface {
	// Get returns a profile. A user can always see their own; anyone
	// else must share a collection invite with the target, in either
	// direction.
	Get(ctx context.Context, targetCode, viewerCode string) (*model.User, error)
	Update(ctx context.Context, userCode string, in UpdateProfile) (*model.User, error)
}

type service struct {
	r Repo
}

func New(r Repo) Service {
	return &service{r: r}
}

func (s *service) Get(ctx context.Context, targetCode, viewerCode string) (*model.User, error) {
	u, err := s.r.ByCode(ctx, targetCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if targetCode == viewerCode {
		return u, nil
	}
	shared, err := s.r.SharesInvite(ctx, viewerCode, targetCode)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, makeErr(ErrForbidden)
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, userCode string, in UpdateProfile) (*model.User, error) {
	u, err := s.r.ByCode(ctx, userCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	// Partial update: omitted fields keep their stored values.
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Headline != "" {
		u.Headline = in.Headline
	}
	if in.Thumbnail != "" {
		u.Thumbnail = in.Thumbnail
	}
	if err := s.r.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

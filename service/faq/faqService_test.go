package faq

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"
)

type repoMock struct {
	insertFn     func(ctx context.Context, f *model.FAQ) error
	byCodeFn     func(ctx context.Context, faqCode string) (*model.FAQ, error)
	listFn       func(ctx context.Context, thingCode string, includeHidden bool) ([]model.FAQ, error)
	setAnswerFn  func(ctx context.Context, faqCode, answer string) error
	setVisibleFn func(ctx context.Context, faqCode string, visible bool) error
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, f *model.FAQ) error {
	if m.insertFn == nil {
		f.Code = "FAQ001"
		f.Visible = true
		return nil
	}
	return m.insertFn(ctx, f)
}
func (m *repoMock) ByCode(ctx context.Context, faqCode string) (*model.FAQ, error) {
	return m.byCodeFn(ctx, faqCode)
}
func (m *repoMock) ListByThing(ctx context.Context, thingCode string, includeHidden bool) ([]model.FAQ, error) {
	return m.listFn(ctx, thingCode, includeHidden)
}
func (m *repoMock) SetAnswer(ctx context.Context, faqCode, answer string) error {
	if m.setAnswerFn == nil {
		return nil
	}
	return m.setAnswerFn(ctx, faqCode, answer)
}
func (m *repoMock) SetVisible(ctx context.Context, faqCode string, visible bool) error {
	if m.setVisibleFn == nil {
		return nil
	}
	return m.setVisibleFn(ctx, faqCode, visible)
}

type thingRepoMock struct {
	canView bool
}

func (m *thingRepoMock) ByCode(ctx context.Context, thingCode string) (*model.Thing, error) {
	if thingCode != "THG001" {
		return nil, sql.ErrNoRows
	}
	return &model.Thing{Code: "THG001", Owner: "OWNER1", Headline: "Canoe"}, nil
}
func (m *thingRepoMock) CanView(ctx context.Context, thingCode, userCode string) (bool, error) {
	return m.canView, nil
}

type userRepoMock struct{}

func (userRepoMock) ByCode(ctx context.Context, userCode string) (*model.User, error) {
	if userCode == "GUEST1" {
		return &model.User{Code: "GUEST1", Email: "guest@example.com"}, nil
	}
	return nil, sql.ErrNoRows
}

type mailerMock struct {
	sent []mailer.Message
}

func (m *mailerMock) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newService(r *repoMock, canView bool) (Service, *mailerMock) {
	mail := &mailerMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(r, &thingRepoMock{canView: canView}, userRepoMock{}, mail, log), mail
}

// --- tests ---

func TestAsk(t *testing.T) {
	s, _ := newService(&repoMock{}, true)

	f, err := s.Ask(context.Background(), "THG001", "GUEST1", "Does it float?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if f.Code != "FAQ001" || f.Questioner != "GUEST1" {
		t.Errorf("unexpected faq: %+v", f)
	}
}

func TestAsk_Forbidden(t *testing.T) {
	s, _ := newService(&repoMock{}, false)

	if _, err := s.Ask(context.Background(), "THG001", "RANDO1", "Does it float?"); Code(err) != ErrForbidden {
		t.Errorf("err = %v; want FORBIDDEN", err)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	s, _ := newService(&repoMock{}, true)

	if _, err := s.Ask(context.Background(), "THG001", "GUEST1", ""); Code(err) != ErrValidation {
		t.Errorf("err = %v; want VALIDATION", err)
	}
}

func TestGet_HiddenFromGuests(t *testing.T) {
	r := &repoMock{byCodeFn: func(ctx context.Context, faqCode string) (*model.FAQ, error) {
		return &model.FAQ{Code: faqCode, ThingCode: "THG001", Questioner: "GUEST1", Visible: false}, nil
	}}
	s, _ := newService(r, true)

	// the owner still sees it
	if _, err := s.Get(context.Background(), "FAQ001", "OWNER1"); err != nil {
		t.Errorf("owner: %v", err)
	}

	// guests get a 404, not a 403: hidden entries do not exist for them
	if _, err := s.Get(context.Background(), "FAQ001", "GUEST1"); Code(err) != ErrNotFound {
		t.Errorf("guest: err = %v; want NOT_FOUND", err)
	}
}

func TestListForThing_OwnerSeesHidden(t *testing.T) {
	var gotHidden bool
	r := &repoMock{listFn: func(ctx context.Context, thingCode string, includeHidden bool) ([]model.FAQ, error) {
		gotHidden = includeHidden
		return nil, nil
	}}
	s, _ := newService(r, true)

	if _, err := s.ListForThing(context.Background(), "THG001", "OWNER1"); err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if !gotHidden {
		t.Error("owner list must include hidden entries")
	}

	if _, err := s.ListForThing(context.Background(), "THG001", "GUEST1"); err != nil {
		t.Fatalf("guest list: %v", err)
	}
	if gotHidden {
		t.Error("guest list must exclude hidden entries")
	}
}

func TestAnswer_OwnerOnly_EmailsQuestioner(t *testing.T) {
	r := &repoMock{byCodeFn: func(ctx context.Context, faqCode string) (*model.FAQ, error) {
		return &model.FAQ{Code: faqCode, ThingCode: "THG001", Questioner: "GUEST1", Question: "Does it float?"}, nil
	}}
	s, mail := newService(r, true)

	if _, err := s.Answer(context.Background(), "FAQ001", "GUEST1", "Yes"); Code(err) != ErrForbidden {
		t.Fatalf("guest answer: err = %v; want FORBIDDEN", err)
	}

	f, err := s.Answer(context.Background(), "FAQ001", "OWNER1", "Yes")
	if err != nil {
		t.Fatalf("owner answer: %v", err)
	}
	if f.Answer != "Yes" {
		t.Errorf("answer = %q", f.Answer)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != "guest@example.com" {
		t.Errorf("questioner not emailed: %+v", mail.sent)
	}
}

func TestSetVisible_OwnerOnly(t *testing.T) {
	r := &repoMock{byCodeFn: func(ctx context.Context, faqCode string) (*model.FAQ, error) {
		return &model.FAQ{Code: faqCode, ThingCode: "THG001", Visible: true}, nil
	}}
	s, _ := newService(r, true)

	if err := s.SetVisible(context.Background(), "FAQ001", "GUEST1", false); Code(err) != ErrForbidden {
		t.Errorf("guest: err = %v; want FORBIDDEN", err)
	}
	if err := s.SetVisible(context.Background(), "FAQ001", "OWNER1", false); err != nil {
		t.Errorf("owner: %v", err)
	}
}

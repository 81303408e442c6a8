package collection

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"

	"github.com/stretchr/testify/require"
)

type repoMock struct {
	insertFn   func(ctx context.Context, c *model.Collection) error
	byCodeFn   func(ctx context.Context, collectionCode string) (*model.Collection, error)
	addThings  []string
	addInvites []string
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, c *model.Collection) error {
	if m.insertFn == nil {
		c.Code = "COL001"
		c.Status = model.CollectionActive
		return nil
	}
	return m.insertFn(ctx, c)
}
func (m *repoMock) ByCode(ctx context.Context, collectionCode string) (*model.Collection, error) {
	return m.byCodeFn(ctx, collectionCode)
}
func (m *repoMock) ListByOwner(ctx context.Context, ownerCode string) ([]model.Collection, error) {
	return nil, nil
}
func (m *repoMock) ListByInvitee(ctx context.Context, userCode string) ([]model.Collection, error) {
	return nil, nil
}
func (m *repoMock) UpdateInfo(ctx context.Context, c *model.Collection) error { return nil }
func (m *repoMock) Delete(ctx context.Context, collectionCode string) error   { return nil }
func (m *repoMock) AddThing(ctx context.Context, collectionCode, thingCode string) error {
	m.addThings = append(m.addThings, thingCode)
	return nil
}
func (m *repoMock) RemoveThing(ctx context.Context, collectionCode, thingCode string) error {
	return nil
}
func (m *repoMock) AddInvite(ctx context.Context, collectionCode, userCode string) error {
	m.addInvites = append(m.addInvites, userCode)
	return nil
}
func (m *repoMock) RemoveInvite(ctx context.Context, collectionCode, userCode string) error {
	return nil
}

type userRepoMock struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

func (m *userRepoMock) ByCode(ctx context.Context, userCode string) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *userRepoMock) Create(ctx context.Context, u *model.User) error {
	return m.createFn(ctx, u)
}

type thingRepoMock struct {
	byCodeFn func(ctx context.Context, thingCode string) (*model.Thing, error)
}

func (m *thingRepoMock) ByCode(ctx context.Context, thingCode string) (*model.Thing, error) {
	return m.byCodeFn(ctx, thingCode)
}

type tokensMock struct {
	issued []*model.RSVP
}

func (m *tokensMock) Issue(ctx context.Context, r *model.RSVP) (*model.RSVP, error) {
	r.Code = "RSVP01"
	m.issued = append(m.issued, r)
	return r, nil
}

type mailerMock struct {
	sent []mailer.Message
}

func (m *mailerMock) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc    Service
	repo   *repoMock
	users  *userRepoMock
	tokens *tokensMock
	mail   *mailerMock
}

func newFixture(col *model.Collection) *fixture {
	repo := &repoMock{byCodeFn: func(ctx context.Context, collectionCode string) (*model.Collection, error) {
		if col == nil || collectionCode != col.Code {
			return nil, sql.ErrNoRows
		}
		return col, nil
	}}
	users := &userRepoMock{}
	things := &thingRepoMock{}
	tokens := &tokensMock{}
	mail := &mailerMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(repo, users, things, tokens, mail, log,
		"https://app.example.com/rsvp", "BRCLON")
	return &fixture{svc: svc, repo: repo, users: users, tokens: tokens, mail: mail}
}

func ownedCollection() *model.Collection {
	return &model.Collection{
		Code: "COL001", Owner: "OWNER1", Headline: "Birthday",
		Status: model.CollectionActive, ThemeCode: "BRCLON",
		Invites: []string{"GUEST1"},
	}
}

// --- tests ---

func TestCreate_DefaultTheme(t *testing.T) {
	f := newFixture(nil)

	c, err := f.svc.Create(context.Background(), "OWNER1", CreateCollection{Headline: "Birthday"})
	require.NoError(t, err)
	require.Equal(t, "BRCLON", c.ThemeCode)

	c, err = f.svc.Create(context.Background(), "OWNER1", CreateCollection{
		Headline: "Xmas", ThemeCode: "JMPA01",
	})
	require.NoError(t, err)
	require.Equal(t, "JMPA01", c.ThemeCode)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.Create(context.Background(), "OWNER1", CreateCollection{})
	require.Equal(t, ErrValidation, Code(err))
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(ownedCollection())

	_, err := f.svc.Get(context.Background(), "COL001", "OWNER1")
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "COL001", "GUEST1")
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "COL001", "RANDO1")
	require.Equal(t, ErrForbidden, Code(err))
}

func TestUpdateDelete_OwnerOnly(t *testing.T) {
	f := newFixture(ownedCollection())

	_, err := f.svc.Update(context.Background(), "COL001", "GUEST1", UpdateCollection{Headline: "nope"})
	require.Equal(t, ErrForbidden, Code(err))

	err = f.svc.Delete(context.Background(), "COL001", "GUEST1")
	require.Equal(t, ErrForbidden, Code(err))

	err = f.svc.Delete(context.Background(), "COL001", "OWNER1")
	require.NoError(t, err)
}

func TestUpdate_OmittedFieldsKept(t *testing.T) {
	c := ownedCollection()
	c.Description = "things I would like"
	c.Thumbnail = "THUMB1"
	c.Hero = "HERO01"
	f := newFixture(c)

	got, err := f.svc.Update(context.Background(), "COL001", "OWNER1", UpdateCollection{Headline: "Name day"})
	require.NoError(t, err)
	require.Equal(t, "Name day", got.Headline)
	require.Equal(t, "things I would like", got.Description)
	require.Equal(t, "THUMB1", got.Thumbnail)
	require.Equal(t, "HERO01", got.Hero)
	require.Equal(t, "BRCLON", got.ThemeCode)
}

func TestAddThing_MustOwnBoth(t *testing.T) {
	f := newFixture(ownedCollection())
	things := &thingRepoMock{byCodeFn: func(ctx context.Context, thingCode string) (*model.Thing, error) {
		return &model.Thing{Code: thingCode, Owner: "SOMEON"}, nil
	}}
	svc := New(f.repo, f.users, things, f.tokens, f.mail,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		"https://app.example.com/rsvp", "BRCLON")

	err := svc.AddThing(context.Background(), "COL001", "OWNER1", "THG001")
	require.Equal(t, ErrForbidden, Code(err))
	require.Empty(t, f.repo.addThings)
}

func TestInvite_ExistingUser(t *testing.T) {
	f := newFixture(ownedCollection())
	f.users.byEmailFn = func(ctx context.Context, email string) (*model.User, error) {
		return &model.User{Code: "GUEST2", Email: email}, nil
	}

	err := f.svc.Invite(context.Background(), "COL001", "OWNER1", "new@example.com")
	require.NoError(t, err)

	require.Len(t, f.tokens.issued, 1)
	rv := f.tokens.issued[0]
	require.Equal(t, model.ActionCollectionInvite, rv.Action)
	require.Equal(t, "COL001", rv.CollectionCode)
	require.Equal(t, "GUEST2", rv.UserCode)

	// Membership is granted at resolution, not at invite time.
	require.Empty(t, f.repo.addInvites)

	require.Len(t, f.mail.sent, 1)
	require.Equal(t, "new@example.com", f.mail.sent[0].To)
	require.Contains(t, f.mail.sent[0].Text, "https://app.example.com/rsvp/RSVP01")
}

func TestInvite_UnknownEmailCreatesAccount(t *testing.T) {
	f := newFixture(ownedCollection())
	created := false
	f.users.byEmailFn = func(ctx context.Context, email string) (*model.User, error) {
		return nil, sql.ErrNoRows
	}
	f.users.createFn = func(ctx context.Context, u *model.User) error {
		u.Code = "USR999"
		created = true
		return nil
	}

	err := f.svc.Invite(context.Background(), "COL001", "OWNER1", "fresh@example.com")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "USR999", f.tokens.issued[0].UserCode)
}

func TestInvite_OwnerOnly(t *testing.T) {
	f := newFixture(ownedCollection())
	err := f.svc.Invite(context.Background(), "COL001", "GUEST1", "x@example.com")
	require.Equal(t, ErrForbidden, Code(err))
	require.Empty(t, f.tokens.issued)
}

func TestAcceptInvite(t *testing.T) {
	f := newFixture(ownedCollection())

	col, err := f.svc.AcceptInvite(context.Background(), &model.RSVP{
		Code: "RSVP01", UserCode: "GUEST2", CollectionCode: "COL001",
	})
	require.NoError(t, err)
	require.Equal(t, "COL001", col)
	require.Equal(t, []string{"GUEST2"}, f.repo.addInvites)
}

func TestAcceptInvite_CollectionGone(t *testing.T) {
	f := newFixture(nil)

	col, err := f.svc.AcceptInvite(context.Background(), &model.RSVP{
		Code: "RSVP01", UserCode: "GUEST2", CollectionCode: "COL404",
	})
	require.NoError(t, err)
	require.Empty(t, col)
	require.Empty(t, f.repo.addInvites)
}

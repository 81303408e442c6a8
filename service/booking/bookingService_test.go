package booking

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"

	"github.com/stretchr/testify/require"
)

// --- mocks ---

type repoMock struct {
	insertFn     func(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	overlapFn    func(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error)
	pendingFn    func(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error)
	getFn        func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error)
	setStatusFn  func(ctx context.Context, tx *sql.Tx, bookingCode string, status model.BookingStatus) error
	blockedFn    func(ctx context.Context, thingCode string) ([]model.Booking, error)
	byRequester  func(ctx context.Context, requesterCode string) ([]model.Booking, error)
	byOwner      func(ctx context.Context, ownerCode string) ([]model.Booking, error)
	expireFn     func(ctx context.Context, cutoff time.Time) (int64, error)
	setStatusLog []model.BookingStatus
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if m.insertFn == nil {
		b.Code = "BKG001"
		b.Status = model.BookingPending
		return nil
	}
	return m.insertFn(ctx, tx, b)
}
func (m *repoMock) HasOverlapTx(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error) {
	if m.overlapFn == nil {
		return false, nil
	}
	return m.overlapFn(ctx, tx, thingCode, start, end)
}
func (m *repoMock) HasPendingByRequesterTx(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error) {
	if m.pendingFn == nil {
		return false, nil
	}
	return m.pendingFn(ctx, tx, thingCode, requesterCode)
}
func (m *repoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
	return m.getFn(ctx, tx, bookingCode)
}
func (m *repoMock) SetStatus(ctx context.Context, tx *sql.Tx, bookingCode string, status model.BookingStatus) error {
	m.setStatusLog = append(m.setStatusLog, status)
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, tx, bookingCode, status)
}
func (m *repoMock) BlockedPeriods(ctx context.Context, thingCode string) ([]model.Booking, error) {
	return m.blockedFn(ctx, thingCode)
}
func (m *repoMock) ListByRequester(ctx context.Context, requesterCode string) ([]model.Booking, error) {
	return m.byRequester(ctx, requesterCode)
}
func (m *repoMock) ListByOwner(ctx context.Context, ownerCode string) ([]model.Booking, error) {
	return m.byOwner(ctx, ownerCode)
}
func (m *repoMock) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.expireFn(ctx, cutoff)
}

type thingRepoMock struct {
	byCodeFn    func(ctx context.Context, thingCode string) (*model.Thing, error)
	getFn       func(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error)
	canViewFn   func(ctx context.Context, thingCode, userCode string) (bool, error)
	statusSet   []model.ThingStatus
	dealtWith   []string
	setStatusFn func(ctx context.Context, tx *sql.Tx, thingCode string, status model.ThingStatus) error
}

var _ ThingRepo = (*thingRepoMock)(nil)

func (m *thingRepoMock) ByCode(ctx context.Context, thingCode string) (*model.Thing, error) {
	return m.byCodeFn(ctx, thingCode)
}
func (m *thingRepoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error) {
	return m.getFn(ctx, tx, thingCode)
}
func (m *thingRepoMock) SetStatus(ctx context.Context, tx *sql.Tx, thingCode string, status model.ThingStatus) error {
	m.statusSet = append(m.statusSet, status)
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, tx, thingCode, status)
}
func (m *thingRepoMock) MarkDealt(ctx context.Context, tx *sql.Tx, thingCode, userCode string) error {
	m.dealtWith = append(m.dealtWith, userCode)
	return nil
}
func (m *thingRepoMock) CanView(ctx context.Context, thingCode, userCode string) (bool, error) {
	if m.canViewFn == nil {
		return true, nil
	}
	return m.canViewFn(ctx, thingCode, userCode)
}

type userRepoMock struct {
	users map[string]*model.User
}

func (m *userRepoMock) ByCode(ctx context.Context, userCode string) (*model.User, error) {
	if u, ok := m.users[userCode]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type tokensMock struct {
	issued   []*model.RSVP
	consumed []string
}

func (m *tokensMock) IssueForBooking(ctx context.Context, action model.RSVPAction, b *model.Booking, ownerEmail string) (*model.RSVP, error) {
	rv := &model.RSVP{Code: "RSVP" + string(action[0]) + "1", Action: action, TargetCode: b.Code}
	m.issued = append(m.issued, rv)
	return rv, nil
}
func (m *tokensMock) Consume(ctx context.Context, rsvpCode string) error {
	m.consumed = append(m.consumed, rsvpCode)
	return nil
}

type mailerMock struct {
	sent []mailer.Message
}

func (m *mailerMock) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// --- fixtures ---

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *service
	repo   *repoMock
	things *thingRepoMock
	users  *userRepoMock
	tokens *tokensMock
	mail   *mailerMock
}

func newFixture(t *testing.T, thing *model.Thing) *fixture {
	t.Helper()

	repo := &repoMock{}
	things := &thingRepoMock{
		byCodeFn: func(ctx context.Context, thingCode string) (*model.Thing, error) {
			if thing == nil || thingCode != thing.Code {
				return nil, sql.ErrNoRows
			}
			return thing, nil
		},
		getFn: func(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error) {
			if thing == nil || thingCode != thing.Code {
				return nil, sql.ErrNoRows
			}
			return thing, nil
		},
	}
	users := &userRepoMock{users: map[string]*model.User{
		"OWNER1": {Code: "OWNER1", Email: "owner@example.com", Name: "Owner"},
		"GUEST1": {Code: "GUEST1", Email: "guest@example.com", Name: "Guest"},
	}}
	tokens := &tokensMock{}
	mail := &mailerMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(newTestDB(t), repo, things, users, tokens, mail, log,
		72*time.Hour, "https://app.example.com/rsvp").(*service)
	svc.now = func() time.Time { return testNow }

	return &fixture{svc: svc, repo: repo, things: things, users: users, tokens: tokens, mail: mail}
}

func lendThing() *model.Thing {
	return &model.Thing{
		Code: "THG001", Type: model.TypeLend, Owner: "OWNER1",
		Headline: "Canoe", Status: model.ThingActive, Available: true,
	}
}

func giftThing() *model.Thing {
	return &model.Thing{
		Code: "THG002", Type: model.TypeGift, Owner: "OWNER1",
		Headline: "Old amp", Status: model.ThingActive, Available: true,
	}
}

func orderThing() *model.Thing {
	return &model.Thing{
		Code: "THG003", Type: model.TypeOrder, Owner: "OWNER1",
		Headline: "Sourdough loaf", Status: model.ThingActive, Available: true,
	}
}

var guest = Requester{Code: "GUEST1", Email: "guest@example.com"}

// --- CreateRequest: date-based ---

func TestCreateRequest_DateBased_Success(t *testing.T) {
	f := newFixture(t, lendThing())

	b, err := f.svc.CreateRequest(context.Background(), "THG001", guest, CreateRequest{
		StartDate: "2026-04-01", EndDate: "2026-04-05",
	})
	require.NoError(t, err)
	require.Equal(t, "BKG001", b.Code)
	require.Equal(t, model.TypeLend, b.ThingType)
	require.Equal(t, "2026-04-01", b.StartDate.Format("2006-01-02"))
	require.Equal(t, "2026-04-05", b.EndDate.Format("2006-01-02"))

	// Date-based things stay ACTIVE while a request is pending.
	require.Empty(t, f.things.statusSet)

	// Owner got accept + reject links in one email.
	require.Len(t, f.tokens.issued, 2)
	require.Equal(t, model.ActionBookingAccept, f.tokens.issued[0].Action)
	require.Equal(t, model.ActionBookingReject, f.tokens.issued[1].Action)
	require.Len(t, f.mail.sent, 1)
	require.Equal(t, "owner@example.com", f.mail.sent[0].To)
	require.Contains(t, f.mail.sent[0].Text, "https://app.example.com/rsvp/")
}

func TestCreateRequest_DateBased_SingleDay(t *testing.T) {
	f := newFixture(t, lendThing())

	b, err := f.svc.CreateRequest(context.Background(), "THG001", guest, CreateRequest{
		StartDate: "2026-04-01", EndDate: "2026-04-01",
	})
	require.NoError(t, err)
	require.Equal(t, b.StartDate, b.EndDate)
}

func TestCreateRequest_DateBased_Overlap(t *testing.T) {
	f := newFixture(t, lendThing())
	f.repo.overlapFn = func(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error) {
		require.Equal(t, "THG001", thingCode)
		require.Equal(t, "2026-04-01", start.Format("2006-01-02"))
		require.Equal(t, "2026-04-05", end.Format("2006-01-02"))
		return true, nil
	}
	f.repo.insertFn = func(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
		t.Fatal("insert must not run on overlap")
		return nil
	}

	_, err := f.svc.CreateRequest(context.Background(), "THG001", guest, CreateRequest{
		StartDate: "2026-04-01", EndDate: "2026-04-05",
	})
	require.Equal(t, ErrConflict, Code(err))
	require.Empty(t, f.mail.sent)
}

func TestCreateRequest_DateBased_Validation(t *testing.T) {
	cases := []struct {
		name    string
		payload CreateRequest
	}{
		{"bad start format", CreateRequest{StartDate: "01-04-2026", EndDate: "2026-04-05"}},
		{"bad end format", CreateRequest{StartDate: "2026-04-01", EndDate: "soon"}},
		{"missing dates", CreateRequest{}},
		{"end before start", CreateRequest{StartDate: "2026-04-05", EndDate: "2026-04-01"}},
		{"start in past", CreateRequest{StartDate: "2026-03-09", EndDate: "2026-04-01"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t, lendThing())
			_, err := f.svc.CreateRequest(context.Background(), "THG001", guest, c.payload)
			require.Equal(t, ErrValidation, Code(err))
		})
	}
}

func TestCreateRequest_DateBased_StartToday(t *testing.T) {
	f := newFixture(t, lendThing())
	_, err := f.svc.CreateRequest(context.Background(), "THG001", guest, CreateRequest{
		StartDate: "2026-03-10", EndDate: "2026-03-12",
	})
	require.NoError(t, err)
}

// --- CreateRequest: single-use ---

func TestCreateRequest_SingleUse_MarksTaken(t *testing.T) {
	f := newFixture(t, giftThing())

	b, err := f.svc.CreateRequest(context.Background(), "THG002", guest, CreateRequest{})
	require.NoError(t, err)
	require.Nil(t, b.StartDate)
	require.Nil(t, b.DeliveryDate)

	require.Equal(t, []model.ThingStatus{model.ThingTaken}, f.things.statusSet)
}

func TestCreateRequest_OwnerLookupFailsAfterCommit(t *testing.T) {
	f := newFixture(t, giftThing())
	delete(f.users.users, "OWNER1")

	// The booking is committed before the owner is fetched for the
	// notification; a lookup failure must not misreport the creation.
	b, err := f.svc.CreateRequest(context.Background(), "THG002", guest, CreateRequest{})
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, []model.ThingStatus{model.ThingTaken}, f.things.statusSet)
	require.Empty(t, f.mail.sent)
}

func TestCreateRequest_SingleUse_DuplicatePending(t *testing.T) {
	f := newFixture(t, giftThing())
	f.repo.pendingFn = func(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error) {
		require.Equal(t, "GUEST1", requesterCode)
		return true, nil
	}

	_, err := f.svc.CreateRequest(context.Background(), "THG002", guest, CreateRequest{})
	require.Equal(t, ErrInvalidRequest, Code(err))
	require.Empty(t, f.things.statusSet)
}

func TestCreateRequest_TakenThing(t *testing.T) {
	th := giftThing()
	th.Status = model.ThingTaken
	f := newFixture(t, th)

	_, err := f.svc.CreateRequest(context.Background(), "THG002", guest, CreateRequest{})
	require.Equal(t, ErrInvalidRequest, Code(err))
}

// --- CreateRequest: repeatable ---

func TestCreateRequest_Order_Success(t *testing.T) {
	f := newFixture(t, orderThing())

	b, err := f.svc.CreateRequest(context.Background(), "THG003", guest, CreateRequest{
		DeliveryDate: "2026-03-20", Quantity: 3,
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-20", b.DeliveryDate.Format("2006-01-02"))
	require.Equal(t, 3, *b.Quantity)

	// Orders never consume exclusivity.
	require.Empty(t, f.things.statusSet)
}

func TestCreateRequest_Order_Validation(t *testing.T) {
	cases := []struct {
		name    string
		payload CreateRequest
	}{
		{"past delivery", CreateRequest{DeliveryDate: "2026-03-09", Quantity: 1}},
		{"bad date", CreateRequest{DeliveryDate: "tomorrow", Quantity: 1}},
		{"zero quantity", CreateRequest{DeliveryDate: "2026-03-20", Quantity: 0}},
		{"negative quantity", CreateRequest{DeliveryDate: "2026-03-20", Quantity: -2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t, orderThing())
			_, err := f.svc.CreateRequest(context.Background(), "THG003", guest, c.payload)
			require.Equal(t, ErrValidation, Code(err))
		})
	}
}

// --- CreateRequest: access ---

func TestCreateRequest_ThingNotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.CreateRequest(context.Background(), "NOPE01", guest, CreateRequest{})
	require.Equal(t, ErrNotFound, Code(err))
}

func TestCreateRequest_NotInvited(t *testing.T) {
	f := newFixture(t, lendThing())
	f.things.canViewFn = func(ctx context.Context, thingCode, userCode string) (bool, error) {
		return false, nil
	}

	_, err := f.svc.CreateRequest(context.Background(), "THG001", guest, CreateRequest{
		StartDate: "2026-04-01", EndDate: "2026-04-05",
	})
	require.Equal(t, ErrForbidden, Code(err))
}

func TestCreateRequest_OwnThing(t *testing.T) {
	f := newFixture(t, lendThing())
	_, err := f.svc.CreateRequest(context.Background(), "THG001",
		Requester{Code: "OWNER1", Email: "owner@example.com"}, CreateRequest{
			StartDate: "2026-04-01", EndDate: "2026-04-05",
		})
	require.Equal(t, ErrInvalidRequest, Code(err))
}

// --- Resolve ---

func pendingBooking(typ model.ThingType, thingCode string) *model.Booking {
	return &model.Booking{
		Code: "BKG001", ThingCode: thingCode, ThingType: typ,
		RequesterCode: "GUEST1", RequesterEmail: "guest@example.com",
		OwnerCode: "OWNER1", Status: model.BookingPending,
		Created: testNow.Add(-time.Hour),
	}
}

func acceptToken() *model.RSVP {
	return &model.RSVP{Code: "RSVPA1", Action: model.ActionBookingAccept, TargetCode: "BKG001"}
}

func rejectToken() *model.RSVP {
	return &model.RSVP{Code: "RSVPR1", Action: model.ActionBookingReject, TargetCode: "BKG001"}
}

func TestResolve_AcceptSingleUse(t *testing.T) {
	th := giftThing()
	th.Status = model.ThingTaken
	f := newFixture(t, th)
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return pendingBooking(model.TypeGift, "THG002"), nil
	}

	res, err := f.svc.Resolve(context.Background(), acceptToken())
	require.NoError(t, err)
	require.Equal(t, "Booking accepted", res.Message)
	require.Equal(t, "Old amp", res.ThingHeadline)

	require.Equal(t, []model.BookingStatus{model.BookingAccepted}, f.repo.setStatusLog)
	// Accepted gift: the requester joins the deal list and the thing
	// goes out of circulation via MarkDealt, not SetStatus.
	require.Equal(t, []string{"GUEST1"}, f.things.dealtWith)
	require.Empty(t, f.things.statusSet)

	require.Equal(t, []string{"RSVPA1"}, f.tokens.consumed)
	require.Len(t, f.mail.sent, 1)
	require.Equal(t, "guest@example.com", f.mail.sent[0].To)
	require.Contains(t, f.mail.sent[0].Subject, "accepted")
}

func TestResolve_RejectSingleUse_Reactivates(t *testing.T) {
	th := giftThing()
	th.Status = model.ThingTaken
	f := newFixture(t, th)
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return pendingBooking(model.TypeGift, "THG002"), nil
	}

	res, err := f.svc.Resolve(context.Background(), rejectToken())
	require.NoError(t, err)
	require.Equal(t, "Booking rejected", res.Message)

	require.Equal(t, []model.BookingStatus{model.BookingRejected}, f.repo.setStatusLog)
	require.Equal(t, []model.ThingStatus{model.ThingActive}, f.things.statusSet)
	require.Empty(t, f.things.dealtWith)

	require.Equal(t, []string{"RSVPR1"}, f.tokens.consumed)
	require.Contains(t, f.mail.sent[0].Subject, "rejected")
}

func TestResolve_AcceptDateBased_ThingUntouched(t *testing.T) {
	f := newFixture(t, lendThing())
	b := pendingBooking(model.TypeLend, "THG001")
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	b.StartDate, b.EndDate = &start, &end
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return b, nil
	}

	res, err := f.svc.Resolve(context.Background(), acceptToken())
	require.NoError(t, err)
	require.NotNil(t, res.StartDate)

	require.Equal(t, []model.BookingStatus{model.BookingAccepted}, f.repo.setStatusLog)
	require.Empty(t, f.things.statusSet)
	require.Empty(t, f.things.dealtWith)
}

func TestResolve_PastWindow(t *testing.T) {
	f := newFixture(t, giftThing())
	b := pendingBooking(model.TypeGift, "THG002")
	b.Created = testNow.Add(-73 * time.Hour)
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return b, nil
	}

	_, err := f.svc.Resolve(context.Background(), acceptToken())
	require.Equal(t, ErrInvalidRequest, Code(err))
	require.EqualError(t, err, "booking expired or already processed")

	// The stale token is burned even though nothing changed.
	require.Equal(t, []string{"RSVPA1"}, f.tokens.consumed)
	require.Empty(t, f.repo.setStatusLog)
}

func TestResolve_AlreadyProcessed(t *testing.T) {
	f := newFixture(t, giftThing())
	b := pendingBooking(model.TypeGift, "THG002")
	b.Status = model.BookingAccepted
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return b, nil
	}

	// Second click on the reject link after an accept.
	_, err := f.svc.Resolve(context.Background(), rejectToken())
	require.Equal(t, ErrInvalidRequest, Code(err))
	require.Empty(t, f.repo.setStatusLog)
}

func TestResolve_BookingGone(t *testing.T) {
	f := newFixture(t, giftThing())
	f.repo.getFn = func(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
		return nil, sql.ErrNoRows
	}

	_, err := f.svc.Resolve(context.Background(), acceptToken())
	require.Equal(t, ErrNotFound, Code(err))
	require.Equal(t, []string{"RSVPA1"}, f.tokens.consumed)
}

// --- Calendar ---

func TestBlockedPeriods_OwnerView(t *testing.T) {
	f := newFixture(t, lendThing())
	f.repo.blockedFn = func(ctx context.Context, thingCode string) ([]model.Booking, error) {
		return []model.Booking{{Code: "BKG001", Status: model.BookingPending}}, nil
	}

	periods, ownerView, err := f.svc.BlockedPeriods(context.Background(), "THG001", "OWNER1")
	require.NoError(t, err)
	require.True(t, ownerView)
	require.Len(t, periods, 1)
}

func TestBlockedPeriods_GuestView(t *testing.T) {
	f := newFixture(t, lendThing())
	f.repo.blockedFn = func(ctx context.Context, thingCode string) ([]model.Booking, error) {
		return nil, nil
	}

	_, ownerView, err := f.svc.BlockedPeriods(context.Background(), "THG001", "GUEST1")
	require.NoError(t, err)
	require.False(t, ownerView)
}

func TestBlockedPeriods_Forbidden(t *testing.T) {
	f := newFixture(t, lendThing())
	f.things.canViewFn = func(ctx context.Context, thingCode, userCode string) (bool, error) {
		return false, nil
	}

	_, _, err := f.svc.BlockedPeriods(context.Background(), "THG001", "RANDO1")
	require.Equal(t, ErrForbidden, Code(err))
}

package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	// Creation-side queries run inside the request transaction, after
	// the thing row has been locked, so two concurrent requests cannot
	// both pass the overlap or availability check.
	InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	HasOverlapTx(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error)
	HasPendingByRequesterTx(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error)

	ByCode(ctx context.Context, bookingCode string) (*model.Booking, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error)
	SetStatus(ctx context.Context, tx *sql.Tx, bookingCode string, status model.BookingStatus) error

	BlockedPeriods(ctx context.Context, thingCode string) ([]model.Booking, error)
	ListByRequester(ctx context.Context, requesterCode string) ([]model.Booking, error)
	ListByOwner(ctx context.Context, ownerCode string) ([]model.Booking, error)

	// ExpireStalePending flips PENDING rows created before cutoff to
	// EXPIRED and reports how many were touched.
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookingCols = `
	booking_code, booking_created, thing_code, thing_type,
	requester_code, requester_email, owner_code,
	start_date, end_date, delivery_date, quantity, status`

func (r *repo) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `
		INSERT INTO booking_periods (booking_code, thing_code, thing_type,
		        requester_code, requester_email, owner_code,
		        start_date, end_date, delivery_date, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING booking_created, status`
	var err error
	for i := 0; i < code.MaxAttempts; i++ {
		b.Code = code.Generate()
		err = tx.QueryRowContext(ctx, q,
			b.Code, b.ThingCode, b.ThingType,
			b.RequesterCode, b.RequesterEmail, b.OwnerCode,
			b.StartDate, b.EndDate, b.DeliveryDate, b.Quantity,
		).Scan(&b.Created, &b.Status)
		if err == nil || !database.IsUniqueViolation(err, "booking_periods_pkey") {
			return err
		}
	}
	return err
}

// HasOverlapTx uses the inclusive overlap rule: existing.start <= new.end
// AND existing.end >= new.start. Only PENDING and ACCEPTED rows block.
func (r *repo) HasOverlapTx(ctx context.Context, tx *sql.Tx, thingCode string, start, end time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM booking_periods
			WHERE thing_code = $1
			  AND status IN ('PENDING','ACCEPTED')
			  AND start_date <= $3
			  AND end_date >= $2
		)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, thingCode, start, end).Scan(&ok)
	return ok, err
}

func (r *repo) HasPendingByRequesterTx(ctx context.Context, tx *sql.Tx, thingCode, requesterCode string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM booking_periods
			WHERE thing_code = $1
			  AND requester_code = $2
			  AND status = 'PENDING'
		)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, thingCode, requesterCode).Scan(&ok)
	return ok, err
}

func (r *repo) ByCode(ctx context.Context, bookingCode string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+bookingCols+`
		FROM booking_periods
		WHERE booking_code = $1`, bookingCode)
	return scanBooking(row)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, bookingCode string) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+bookingCols+`
		FROM booking_periods
		WHERE booking_code = $1
		FOR UPDATE`, bookingCode)
	return scanBooking(row)
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, bookingCode string, status model.BookingStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE booking_periods
		SET status = $2
		WHERE booking_code = $1`, bookingCode, status)
	return err
}

func (r *repo) BlockedPeriods(ctx context.Context, thingCode string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM booking_periods
		WHERE thing_code = $1
		  AND status IN ('PENDING','ACCEPTED')
		ORDER BY start_date ASC NULLS LAST, booking_created ASC`, thingCode)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *repo) ListByRequester(ctx context.Context, requesterCode string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM booking_periods
		WHERE requester_code = $1
		ORDER BY booking_created DESC`, requesterCode)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *repo) ListByOwner(ctx context.Context, ownerCode string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM booking_periods
		WHERE owner_code = $1
		ORDER BY booking_created DESC`, ownerCode)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *repo) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE booking_periods
		SET status = 'EXPIRED'
		WHERE status = 'PENDING'
		  AND booking_created < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.Code, &b.Created, &b.ThingCode, &b.ThingType,
		&b.RequesterCode, &b.RequesterEmail, &b.OwnerCode,
		&b.StartDate, &b.EndDate, &b.DeliveryDate, &b.Quantity, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.Code, &b.Created, &b.ThingCode, &b.ThingType,
			&b.RequesterCode, &b.RequesterEmail, &b.OwnerCode,
			&b.StartDate, &b.EndDate, &b.DeliveryDate, &b.Quantity, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

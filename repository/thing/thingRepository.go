package thing

import (
	"context"
	"database/sql"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	Insert(ctx context.Context, t *model.Thing) error
	ByCode(ctx context.Context, thingCode string) (*model.Thing, error)
	ListByOwner(ctx context.Context, ownerCode string) ([]model.Thing, error)
	// ListInvitedVisible returns available things in collections the
	// user is invited to.
	ListInvitedVisible(ctx context.Context, userCode string) ([]model.Thing, error)
	UpdateInfo(ctx context.Context, t *model.Thing) error
	// SetStatusUnbooked flips status/availability only while no booking
	// exists for the thing; once the engine owns the status this is a
	// no-op returning false.
	SetStatusUnbooked(ctx context.Context, thingCode string, status model.ThingStatus, available bool) (bool, error)
	Delete(ctx context.Context, thingCode string) error
	CanView(ctx context.Context, thingCode, userCode string) (bool, error)

	// Deal-list maintenance (manual reserve/release by the owner flow).
	AddDeal(ctx context.Context, thingCode, userCode string) error
	RemoveDeal(ctx context.Context, thingCode, userCode string) error

	// Engine-side operations, always inside the booking transaction.
	GetForUpdate(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error)
	SetStatus(ctx context.Context, tx *sql.Tx, thingCode string, status model.ThingStatus) error
	// MarkDealt finalizes an accepted single-use booking: INACTIVE,
	// unavailable, requester recorded once in the deal list.
	MarkDealt(ctx context.Context, tx *sql.Tx, thingCode, userCode string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const thingCols = `
	t.thing_code, t.thing_type, t.thing_owner, t.thing_created,
	t.thing_headline, t.thing_description, t.thing_thumbnail,
	t.thing_status, t.thing_fee, t.thing_available`

func (r *repo) Insert(ctx context.Context, t *model.Thing) error {
	const q = `
		INSERT INTO things (thing_code, thing_type, thing_owner, thing_headline,
		                    thing_description, thing_thumbnail, thing_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING thing_created, thing_status, thing_available`
	var err error
	for i := 0; i < code.MaxAttempts; i++ {
		t.Code = code.Generate()
		err = r.db.QueryRowContext(ctx, q,
			t.Code, t.Type, t.Owner, t.Headline, t.Description, t.Thumbnail, t.Fee,
		).Scan(&t.Created, &t.Status, &t.Available)
		if err == nil || !database.IsUniqueViolation(err, "things_pkey") {
			return err
		}
	}
	return err
}

func (r *repo) ByCode(ctx context.Context, thingCode string) (*model.Thing, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+thingCols+`
		FROM things t
		WHERE t.thing_code = $1`, thingCode)
	t, err := scanThing(row)
	if err != nil {
		return nil, err
	}
	t.Deal, err = r.dealList(ctx, thingCode)
	return t, err
}

func (r *repo) dealList(ctx context.Context, thingCode string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_code
		FROM thing_deals
		WHERE thing_code = $1
		ORDER BY user_code`, thingCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) ListByOwner(ctx context.Context, ownerCode string) ([]model.Thing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+thingCols+`
		FROM things t
		WHERE t.thing_owner = $1
		ORDER BY t.thing_created DESC`, ownerCode)
	if err != nil {
		return nil, err
	}
	return scanThings(rows)
}

func (r *repo) ListInvitedVisible(ctx context.Context, userCode string) ([]model.Thing, error) {
	const q = `
		SELECT DISTINCT ` + thingCols + `
		FROM things t
		JOIN collection_things ct ON ct.thing_code = t.thing_code
		JOIN collection_invites ci ON ci.collection_code = ct.collection_code
		WHERE ci.user_code = $1
		  AND t.thing_available
		ORDER BY t.thing_created DESC`
	rows, err := r.db.QueryContext(ctx, q, userCode)
	if err != nil {
		return nil, err
	}
	return scanThings(rows)
}

func (r *repo) UpdateInfo(ctx context.Context, t *model.Thing) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE things
		SET thing_headline = $2,
		    thing_description = $3,
		    thing_thumbnail = $4,
		    thing_fee = $5
		WHERE thing_code = $1`,
		t.Code, t.Headline, t.Description, t.Thumbnail, t.Fee)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetStatusUnbooked(ctx context.Context, thingCode string, status model.ThingStatus, available bool) (bool, error) {
	const q = `
		UPDATE things
		SET thing_status = $2,
		    thing_available = $3
		WHERE thing_code = $1
		  AND NOT EXISTS (SELECT 1 FROM booking_periods bp WHERE bp.thing_code = $1)`
	res, err := r.db.ExecContext(ctx, q, thingCode, status, available)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete cascades removal from every collection via FK, along with deal
// rows.
func (r *repo) Delete(ctx context.Context, thingCode string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM things WHERE thing_code = $1`, thingCode)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) CanView(ctx context.Context, thingCode, userCode string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM things t WHERE t.thing_code = $1 AND t.thing_owner = $2
		) OR EXISTS (
			SELECT 1
			FROM things t
			JOIN collection_things ct ON ct.thing_code = t.thing_code
			JOIN collection_invites ci ON ci.collection_code = ct.collection_code
			WHERE t.thing_code = $1
			  AND t.thing_available
			  AND ci.user_code = $2
		)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, thingCode, userCode).Scan(&ok)
	return ok, err
}

func (r *repo) AddDeal(ctx context.Context, thingCode, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO thing_deals (thing_code, user_code)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, thingCode, userCode)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE things SET thing_available = FALSE WHERE thing_code = $1`, thingCode)
	return err
}

func (r *repo) RemoveDeal(ctx context.Context, thingCode, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM thing_deals
		WHERE thing_code = $1 AND user_code = $2`, thingCode, userCode)
	if err != nil {
		return err
	}
	// Free the thing again once nobody holds a deal on it.
	_, err = r.db.ExecContext(ctx, `
		UPDATE things
		SET thing_available = TRUE
		WHERE thing_code = $1
		  AND NOT EXISTS (SELECT 1 FROM thing_deals td WHERE td.thing_code = $1)`, thingCode)
	return err
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, thingCode string) (*model.Thing, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+thingCols+`
		FROM things t
		WHERE t.thing_code = $1
		FOR UPDATE`, thingCode)
	return scanThing(row)
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, thingCode string, status model.ThingStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE things SET thing_status = $2 WHERE thing_code = $1`, thingCode, status)
	return err
}

func (r *repo) MarkDealt(ctx context.Context, tx *sql.Tx, thingCode, userCode string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE things
		SET thing_status = $2,
		    thing_available = FALSE
		WHERE thing_code = $1`, thingCode, model.ThingInactive)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO thing_deals (thing_code, user_code)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, thingCode, userCode)
	return err
}

func scanThing(row *sql.Row) (*model.Thing, error) {
	var t model.Thing
	if err := row.Scan(&t.Code, &t.Type, &t.Owner, &t.Created, &t.Headline,
		&t.Description, &t.Thumbnail, &t.Status, &t.Fee, &t.Available); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanThings(rows *sql.Rows) ([]model.Thing, error) {
	defer rows.Close()
	var out []model.Thing
	for rows.Next() {
		var t model.Thing
		if err := rows.Scan(&t.Code, &t.Type, &t.Owner, &t.Created, &t.Headline,
			&t.Description, &t.Thumbnail, &t.Status, &t.Fee, &t.Available); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package collection

import (
	"context"
	"database/sql"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	Insert(ctx context.Context, c *model.Collection) error
	ByCode(ctx context.Context, collectionCode string) (*model.Collection, error)
	ListByOwner(ctx context.Context, ownerCode string) ([]model.Collection, error)
	ListByInvitee(ctx context.Context, userCode string) ([]model.Collection, error)
	UpdateInfo(ctx context.Context, c *model.Collection) error
	Delete(ctx context.Context, collectionCode string) error

	AddThing(ctx context.Context, collectionCode, thingCode string) error
	RemoveThing(ctx context.Context, collectionCode, thingCode string) error
	AddInvite(ctx context.Context, collectionCode, userCode string) error
	RemoveInvite(ctx context.Context, collectionCode, userCode string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const collectionCols = `
	c.collection_code, c.collection_owner, c.collection_created,
	c.collection_headline, c.collection_description, c.collection_thumbnail,
	c.collection_hero, c.collection_status, c.theme_code`

func (r *repo) Insert(ctx context.Context, c *model.Collection) error {
	const q = `
		INSERT INTO collections (collection_code, collection_owner, collection_headline,
		        collection_description, collection_thumbnail, collection_hero, theme_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING collection_created, collection_status`
	var err error
	for i := 0; i < code.MaxAttempts; i++ {
		c.Code = code.Generate()
		err = r.db.QueryRowContext(ctx, q,
			c.Code, c.Owner, c.Headline, c.Description, c.Thumbnail, c.Hero, c.ThemeCode,
		).Scan(&c.Created, &c.Status)
		if err == nil || !database.IsUniqueViolation(err, "collections_pkey") {
			return err
		}
	}
	return err
}

func (r *repo) ByCode(ctx context.Context, collectionCode string) (*model.Collection, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+collectionCols+`
		FROM collections c
		WHERE c.collection_code = $1`, collectionCode)
	var c model.Collection
	if err := row.Scan(&c.Code, &c.Owner, &c.Created, &c.Headline, &c.Description,
		&c.Thumbnail, &c.Hero, &c.Status, &c.ThemeCode); err != nil {
		return nil, err
	}
	var err error
	if c.Things, err = r.memberCodes(ctx, `
		SELECT thing_code FROM collection_things
		WHERE collection_code = $1 ORDER BY added_at`, c.Code); err != nil {
		return nil, err
	}
	if c.Invites, err = r.memberCodes(ctx, `
		SELECT user_code FROM collection_invites
		WHERE collection_code = $1 ORDER BY invited_at`, c.Code); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) memberCodes(ctx context.Context, q, collectionCode string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, collectionCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) ListByOwner(ctx context.Context, ownerCode string) ([]model.Collection, error) {
	return r.list(ctx, `
		SELECT `+collectionCols+`
		FROM collections c
		WHERE c.collection_owner = $1
		ORDER BY c.collection_created DESC`, ownerCode)
}

func (r *repo) ListByInvitee(ctx context.Context, userCode string) ([]model.Collection, error) {
	return r.list(ctx, `
		SELECT `+collectionCols+`
		FROM collections c
		JOIN collection_invites ci ON ci.collection_code = c.collection_code
		WHERE ci.user_code = $1
		ORDER BY c.collection_created DESC`, userCode)
}

func (r *repo) list(ctx context.Context, q, arg string) ([]model.Collection, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Collection
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.Code, &c.Owner, &c.Created, &c.Headline, &c.Description,
			&c.Thumbnail, &c.Hero, &c.Status, &c.ThemeCode); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) UpdateInfo(ctx context.Context, c *model.Collection) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE collections
		SET collection_headline = $2,
		    collection_description = $3,
		    collection_thumbnail = $4,
		    collection_hero = $5,
		    collection_status = $6,
		    theme_code = $7
		WHERE collection_code = $1`,
		c.Code, c.Headline, c.Description, c.Thumbnail, c.Hero, c.Status, c.ThemeCode)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, collectionCode string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM collections WHERE collection_code = $1`, collectionCode)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) AddThing(ctx context.Context, collectionCode, thingCode string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collection_things (collection_code, thing_code)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, collectionCode, thingCode)
	return err
}

func (r *repo) RemoveThing(ctx context.Context, collectionCode, thingCode string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM collection_things
		WHERE collection_code = $1 AND thing_code = $2`, collectionCode, thingCode)
	return err
}

func (r *repo) AddInvite(ctx context.Context, collectionCode, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collection_invites (collection_code, user_code)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, collectionCode, userCode)
	return err
}

func (r *repo) RemoveInvite(ctx context.Context, collectionCode, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM collection_invites
		WHERE collection_code = $1 AND user_code = $2`, collectionCode, userCode)
	return err
}

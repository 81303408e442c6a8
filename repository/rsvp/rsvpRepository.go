package rsvp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	Insert(ctx context.Context, r *model.RSVP) error
	ByCode(ctx context.Context, rsvpCode string) (*model.RSVP, error)
	Delete(ctx context.Context, rsvpCode string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, rv *model.RSVP) error {
	ctxJSON, err := json.Marshal(rv.Context)
	if err != nil {
		return err
	}
	if rv.Context == nil {
		ctxJSON = []byte("{}")
	}
	const q = `
		INSERT INTO rsvps (rsvp_code, user_code, user_email, rsvp_action,
		                   rsvp_target_code, collection_code, rsvp_context)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7)
		RETURNING rsvp_created`
	for i := 0; i < code.MaxAttempts; i++ {
		rv.Code = code.Generate()
		err = r.db.QueryRowContext(ctx, q,
			rv.Code, rv.UserCode, rv.UserEmail, rv.Action,
			rv.TargetCode, rv.CollectionCode, ctxJSON,
		).Scan(&rv.Created)
		if err == nil || !database.IsUniqueViolation(err, "rsvps_pkey") {
			return err
		}
	}
	return err
}

func (r *repo) ByCode(ctx context.Context, rsvpCode string) (*model.RSVP, error) {
	const q = `
		SELECT rsvp_code, rsvp_created, user_code, user_email, rsvp_action,
		       COALESCE(rsvp_target_code,''), COALESCE(collection_code,''), rsvp_context
		FROM rsvps
		WHERE rsvp_code = $1`
	var rv model.RSVP
	var ctxJSON []byte
	err := r.db.QueryRowContext(ctx, q, rsvpCode).Scan(
		&rv.Code, &rv.Created, &rv.UserCode, &rv.UserEmail, &rv.Action,
		&rv.TargetCode, &rv.CollectionCode, &ctxJSON,
	)
	if err != nil {
		return nil, err
	}
	if len(ctxJSON) > 0 {
		if err := json.Unmarshal(ctxJSON, &rv.Context); err != nil {
			return nil, err
		}
	}
	return &rv, nil
}

func (r *repo) Delete(ctx context.Context, rsvpCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rsvps WHERE rsvp_code = $1`, rsvpCode)
	return err
}

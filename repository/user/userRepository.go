package user

import (
	"context"
	"database/sql"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByCode(ctx context.Context, userCode string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	TouchActivity(ctx context.Context, userCode string) error
	UpdateProfile(ctx context.Context, u *model.User) error
	// SharesInvite reports whether either user is invited to a
	// collection owned by the other.
	SharesInvite(ctx context.Context, userCode, otherCode string) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

// Create assigns a fresh code, retrying on the off chance the generated
// code already exists. A duplicate email surfaces as-is for the caller
// to map.
func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (user_code, user_email, user_name)
		VALUES ($1, $2, $3)
		RETURNING user_created, user_last_activity`
	var err error
	for i := 0; i < code.MaxAttempts; i++ {
		u.Code = code.Generate()
		err = r.db.QueryRowContext(ctx, q, u.Code, u.Email, u.Name).
			Scan(&u.Created, &u.LastActivity)
		if err == nil || !database.IsUniqueViolation(err, "users_pkey") {
			return err
		}
	}
	return err
}

func (r *repo) ByCode(ctx context.Context, userCode string) (*model.User, error) {
	return scanOne(r.db.QueryRowContext(ctx, `
		SELECT user_code, user_email, user_name, user_created,
		       user_last_activity, user_headline, user_thumbnail
		FROM users
		WHERE user_code = $1`, userCode))
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanOne(r.db.QueryRowContext(ctx, `
		SELECT user_code, user_email, user_name, user_created,
		       user_last_activity, user_headline, user_thumbnail
		FROM users
		WHERE lower(user_email) = lower($1)`, email))
}

func scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.Code, &u.Email, &u.Name, &u.Created,
		&u.LastActivity, &u.Headline, &u.Thumbnail); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET user_name = $2, user_headline = $3, user_thumbnail = $4
		WHERE user_code = $1`,
		u.Code, u.Name, u.Headline, u.Thumbnail)
	return err
}

func (r *repo) SharesInvite(ctx context.Context, userCode, otherCode string) (bool, error) {
	var shared bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM collection_invites ci
			JOIN collections c ON c.collection_code = ci.collection_code
			WHERE (c.collection_owner = $1 AND ci.user_code = $2)
			   OR (c.collection_owner = $2 AND ci.user_code = $1)
		)`, userCode, otherCode).Scan(&shared)
	return shared, err
}

func (r *repo) TouchActivity(ctx context.Context, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET user_last_activity = NOW()
		WHERE user_code = $1`, userCode)
	return err
}

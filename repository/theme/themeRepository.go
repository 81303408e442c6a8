package theme

import (
	"context"
	"database/sql"

	"github.com/oiueei/oiueei/model"
)

type Repo interface {
	ByCode(ctx context.Context, themeCode string) (*model.Theme, error)
	List(ctx context.Context) ([]model.Theme, error)
	// EnsureDefault upserts the seed palette so the configured default
	// theme always exists at startup.
	EnsureDefault(ctx context.Context, seed model.Theme) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const themeCols = `
	theme_code, theme_name, theme_010, theme_020, theme_040, theme_060,
	theme_080, theme_100, theme_200, theme_400, theme_600, theme_800`

func (r *repo) ByCode(ctx context.Context, themeCode string) (*model.Theme, error) {
	var t model.Theme
	err := r.db.QueryRowContext(ctx, `
		SELECT `+themeCols+`
		FROM themes
		WHERE theme_code = $1`, themeCode).Scan(
		&t.Code, &t.Name, &t.C010, &t.C020, &t.C040, &t.C060,
		&t.C080, &t.C100, &t.C200, &t.C400, &t.C600, &t.C800)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context) ([]model.Theme, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+themeCols+`
		FROM themes
		ORDER BY theme_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.Code, &t.Name, &t.C010, &t.C020, &t.C040, &t.C060,
			&t.C080, &t.C100, &t.C200, &t.C400, &t.C600, &t.C800); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repo) EnsureDefault(ctx context.Context, seed model.Theme) error {
	const q = `
		INSERT INTO themes (theme_code, theme_name, theme_010, theme_020, theme_040,
		        theme_060, theme_080, theme_100, theme_200, theme_400, theme_600, theme_800)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (theme_code) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		seed.Code, seed.Name, seed.C010, seed.C020, seed.C040, seed.C060,
		seed.C080, seed.C100, seed.C200, seed.C400, seed.C600, seed.C800)
	return err
}

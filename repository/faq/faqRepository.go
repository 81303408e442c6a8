package faq

import (
	"context"
	"database/sql"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/util/code"
	"github.com/oiueei/oiueei/util/database"
)

type Repo interface {
	Insert(ctx context.Context, f *model.FAQ) error
	ByCode(ctx context.Context, faqCode string) (*model.FAQ, error)
	ListByThing(ctx context.Context, thingCode string, includeHidden bool) ([]model.FAQ, error)
	SetAnswer(ctx context.Context, faqCode, answer string) error
	SetVisible(ctx context.Context, faqCode string, visible bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const faqCols = `
	faq_code, faq_thing, faq_created, faq_questioner, faq_question,
	faq_answer, faq_is_visible`

func (r *repo) Insert(ctx context.Context, f *model.FAQ) error {
	const q = `
		INSERT INTO faqs (faq_code, faq_thing, faq_questioner, faq_question)
		VALUES ($1, $2, $3, $4)
		RETURNING faq_created, faq_is_visible`
	var err error
	for i := 0; i < code.MaxAttempts; i++ {
		f.Code = code.Generate()
		err = r.db.QueryRowContext(ctx, q, f.Code, f.ThingCode, f.Questioner, f.Question).
			Scan(&f.Created, &f.Visible)
		if err == nil || !database.IsUniqueViolation(err, "faqs_pkey") {
			return err
		}
	}
	return err
}

func (r *repo) ByCode(ctx context.Context, faqCode string) (*model.FAQ, error) {
	var f model.FAQ
	err := r.db.QueryRowContext(ctx, `
		SELECT `+faqCols+`
		FROM faqs
		WHERE faq_code = $1`, faqCode).Scan(
		&f.Code, &f.ThingCode, &f.Created, &f.Questioner, &f.Question,
		&f.Answer, &f.Visible)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repo) ListByThing(ctx context.Context, thingCode string, includeHidden bool) ([]model.FAQ, error) {
	q := `
		SELECT ` + faqCols + `
		FROM faqs
		WHERE faq_thing = $1`
	if !includeHidden {
		q += ` AND faq_is_visible`
	}
	q += ` ORDER BY faq_created ASC`
	rows, err := r.db.QueryContext(ctx, q, thingCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FAQ
	for rows.Next() {
		var f model.FAQ
		if err := rows.Scan(&f.Code, &f.ThingCode, &f.Created, &f.Questioner,
			&f.Question, &f.Answer, &f.Visible); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repo) SetAnswer(ctx context.Context, faqCode, answer string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE faqs SET faq_answer = $2 WHERE faq_code = $1`, faqCode, answer)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetVisible(ctx context.Context, faqCode string, visible bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE faqs SET faq_is_visible = $2 WHERE faq_code = $1`, faqCode, visible)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

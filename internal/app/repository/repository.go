package repository

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

const (
	charactersQuery = `
SELECT id, name, description, card, COALESCE(avatar_url, '')
FROM persona.characters
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\')
	  AND ($2 = '' OR id = $2)
	ORDER BY name ASC
	LIMIT $3;`

	presetsQuery = `
SELECT id, name, description, body, ''
FROM persona.presets
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\')
	  AND ($2 = '' OR id = $2)
	ORDER BY name ASC
	LIMIT $3;`

	userQuery = `
SELECT id, COALESCE(user_name, ''), COALESCE(lang, ''), is_admin FROM persona.users
	WHERE id = $1;`
)

// Querier is the read part of *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type Repository struct {
	Pool Querier
}

func NewRepository(pool Querier) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Characters() model.Lister {
	return &table{pool: r.Pool, name: "characters", query: charactersQuery}
}

func (r *Repository) Presets() model.Lister {
	return &table{pool: r.Pool, name: "presets", query: presetsQuery}
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	rows, err := r.Pool.Query(ctx, userQuery, id)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}

	users, err := readUsers(rows)
	if err != nil {
		return nil, errors.Wrap(err, "read user")
	}

	switch len(users) {
	case 0:
		return nil, model.ErrUserNotFound
	case 1:
		return users[0], nil
	default:
		return nil, model.ErrFoundTwoUsers
	}
}

type table struct {
	pool  Querier
	name  string
	query string
}

func (t *table) List(ctx context.Context, filter model.Filter) ([]model.Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultMaxResults
	}

	rows, err := t.pool.Query(ctx, t.query, escapeLike(strings.TrimSpace(filter.Search)), filter.ID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", t.name)
	}

	records, err := readRecords(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", t.name)
	}

	return records, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func readRecords(rows pgx.Rows) ([]model.Record, error) {
	defer rows.Close()
	records := make([]model.Record, 0)

	for rows.Next() {
		rec := model.Record{}

		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Description,
			&rec.Content,
			&rec.Avatar,
		); err != nil {
			return nil, errors.Wrap(err, model.ErrScanSqlRow.Error())
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func readUsers(rows pgx.Rows) ([]*model.User, error) {
	defer rows.Close()
	var users []*model.User

	for rows.Next() {
		user := &model.User{}

		if err := rows.Scan(
			&user.ID,
			&user.UserName,
			&user.Lang,
			&user.IsAdmin,
		); err != nil {
			return nil, errors.Wrap(err, model.ErrScanSqlRow.Error())
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

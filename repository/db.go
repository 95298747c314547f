package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	blog "github.com/goliatone/go-blog"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// Open returns a bun DB for driver with the blog models registered
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn), nil
	}
	return nil, fmt.Errorf("unsupported SQL driver %q", driver)
}

// OpenSQLite opens a SQLite database. SQLite allows one writer, so the
// pool is pinned to a single connection, which also keeps :memory:
// databases alive across queries.
func OpenSQLite(dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	RegisterModels(db)
	return db, nil
}

// OpenPostgres opens a PostgreSQL database through pgdriver
func OpenPostgres(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	RegisterModels(db)
	return db
}

// RegisterModels registers the join models bun needs for m2m relations
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*blog.PostCategory)(nil))
}

// CreateSchema creates every table and index if missing
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model       any
		foreignKeys []string
	}{
		{model: (*blog.User)(nil)},
		{model: (*blog.Category)(nil)},
		{
			model:       (*blog.Post)(nil),
			foreignKeys: []string{`("author_id") REFERENCES "users" ("id") ON DELETE CASCADE`},
		},
		{
			model: (*blog.PostCategory)(nil),
			foreignKeys: []string{
				`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
				`("category_id") REFERENCES "categories" ("id") ON DELETE CASCADE`,
			},
		},
		{
			model: (*blog.Comment)(nil),
			foreignKeys: []string{
				`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
				`("author_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			},
		},
		{
			model: (*blog.Like)(nil),
			foreignKeys: []string{
				`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
				`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			},
		},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table.model, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*blog.Post)(nil), "posts_created_at_idx", "created_at"},
		{(*blog.Comment)(nil), "comments_post_id_idx", "post_id"},
		{(*blog.Like)(nil), "likes_post_id_idx", "post_id"},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			IfNotExists().
			Column(idx.column).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// translate maps driver errors to the blog store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsRecordNotFound(err):
		return blog.ErrRecordNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", blog.ErrDuplicateRecord, err)
	}
	return err
}

// IsUniqueViolation reports whether err comes from a unique index on
// SQLite or PostgreSQL
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blog.ErrRecordNotFound
	}
	return nil
}

// orderBy sorts on columns of the root model so joined relations do
// not make the column ambiguous
func orderBy(exprs ...string) repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, expr := range exprs {
			q = q.OrderExpr("?TableAlias." + expr)
		}
		return q
	})
}

package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS products (
	code             TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	brand            TEXT NOT NULL DEFAULT '',
	ingredients_text TEXT NOT NULL DEFAULT '',
	risk_rating      TEXT NOT NULL DEFAULT '',
	serving_size     TEXT NOT NULL DEFAULT '',
	protein_g        REAL NOT NULL DEFAULT -1,
	fat_g            REAL NOT NULL DEFAULT -1,
	carbohydrates_g  REAL NOT NULL DEFAULT -1,
	salt_g           REAL NOT NULL DEFAULT -1
);
`

// SQLiteCatalog implements Lookup over a local SQLite file.
type SQLiteCatalog struct {
	db *sqlx.DB
}

func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) Close() error { return c.db.Close() }

func (c *SQLiteCatalog) Get(ctx context.Context, code string) (Product, error) {
	var p Product
	err := c.db.GetContext(ctx, &p, `SELECT * FROM products WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

// Upsert inserts or replaces a catalog record; used by import tooling and
// tests.
func (c *SQLiteCatalog) Upsert(ctx context.Context, p Product) error {
	_, err := c.db.NamedExecContext(ctx, `
		INSERT INTO products (code, name, brand, ingredients_text, risk_rating, serving_size, protein_g, fat_g, carbohydrates_g, salt_g)
		VALUES (:code, :name, :brand, :ingredients_text, :risk_rating, :serving_size, :protein_g, :fat_g, :carbohydrates_g, :salt_g)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			ingredients_text = excluded.ingredients_text,
			risk_rating = excluded.risk_rating,
			serving_size = excluded.serving_size,
			protein_g = excluded.protein_g,
			fat_g = excluded.fat_g,
			carbohydrates_g = excluded.carbohydrates_g,
			salt_g = excluded.salt_g`, p)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

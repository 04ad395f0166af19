package db

import (
	"context"
	"database/sql"
	"fmt"
)

const propertyColumns = `id, code, title, type, status, price, created_at, deleted_at`

func scanProperty(sc interface{ Scan(...any) error }) (Property, error) {
	var p Property
	err := sc.Scan(&p.ID, &p.Code, &p.Title, &p.Type, &p.Status, &p.Price, &p.CreatedAt, &p.DeletedAt)
	return p, err
}

// ListProperties returns every property, deleted ones included, ordered by id.
func (s *Store) ListProperties(ctx context.Context) ([]Property, error) {
	rows, err := s.Db.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	props := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *Store) CountProperties(ctx context.Context) (int, error) {
	var n int
	if err := s.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

// CodeTx is a transaction scoped to one code prefix.
type CodeTx struct {
	tx *sql.Tx
}

// BeginCodeTx serializes code generation for prefix until Commit or Rollback.
func (s *Store) BeginCodeTx(ctx context.Context, prefix string) (*CodeTx, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "property_code:"+prefix); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("lock prefix %s: %w", prefix, err)
	}
	return &CodeTx{tx: tx}, nil
}

func (c *CodeTx) Codes(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.tx.QueryContext(ctx,
		`SELECT code FROM properties WHERE code LIKE $1`, prefix+"-%")
	if err != nil {
		return nil, fmt.Errorf("select codes %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

// SetCode only writes rows that still have no code.
func (c *CodeTx) SetCode(ctx context.Context, id int64, code string) error {
	res, err := c.tx.ExecContext(ctx,
		`UPDATE properties SET code = $1 WHERE id = $2 AND (code IS NULL OR code = '')`, code, id)
	if err != nil {
		return fmt.Errorf("set code %d: %w", id, err)
	}
	return expectOne(res, "properties", fmt.Sprint(id))
}

func (c *CodeTx) Commit() error   { return c.tx.Commit() }
func (c *CodeTx) Rollback() error { return c.tx.Rollback() }

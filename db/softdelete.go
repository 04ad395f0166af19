package db

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// softDeleteTables are the tables carrying a nullable deleted_at marker.
var softDeleteTables = map[string]bool{
	"properties":            true,
	"clients":               true,
	"advisors":              true,
	"appointments":          true,
	"property_appointments": true,
	"service_inquiries":     true,
}

func SoftDeleteTables() []string {
	out := make([]string, 0, len(softDeleteTables))
	for t := range softDeleteTables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func checkSoftDeleteTable(table string) error {
	if !softDeleteTables[table] {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

type Record struct {
	ID        string     `json:"id"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func (r Record) Active() bool { return r.DeletedAt == nil }

// Partition splits rows into active and deleted, keeping input order.
func Partition(rows []Record) (active, deleted []Record) {
	for _, r := range rows {
		if r.Active() {
			active = append(active, r)
		} else {
			deleted = append(deleted, r)
		}
	}
	return active, deleted
}

type SoftDeleteSummary struct {
	Table          string   `json:"table"`
	Active         int      `json:"active"`
	Deleted        int      `json:"deleted"`
	Total          int      `json:"total"`
	FilteredActive int      `json:"filteredActive"`
	Consistent     bool     `json:"consistent"`
	Recent         []Record `json:"recent"`
}

const recentSample = 20

func (s *Store) SoftDeleteSummary(ctx context.Context, table string) (*SoftDeleteSummary, error) {
	if err := checkSoftDeleteTable(table); err != nil {
		return nil, err
	}

	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, deleted_at FROM `+quote(table)+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var all []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var filtered int
	err = s.Db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+quote(table)+` WHERE deleted_at IS NULL`).Scan(&filtered)
	if err != nil {
		return nil, fmt.Errorf("count active %s: %w", table, err)
	}

	active, deleted := Partition(all)
	recent := all
	if len(recent) > recentSample {
		recent = recent[:recentSample]
	}
	return &SoftDeleteSummary{
		Table:          table,
		Active:         len(active),
		Deleted:        len(deleted),
		Total:          len(all),
		FilteredActive: filtered,
		Consistent:     len(active) == filtered,
		Recent:         recent,
	}, nil
}

func (s *Store) SoftDelete(ctx context.Context, table, id string) error {
	if err := checkSoftDeleteTable(table); err != nil {
		return err
	}
	res, err := s.Db.ExecContext(ctx,
		`UPDATE `+quote(table)+` SET deleted_at = NOW() WHERE id::text = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete %s/%s: %w", table, id, err)
	}
	return expectOne(res, table, id)
}

func (s *Store) Restore(ctx context.Context, table, id string) error {
	if err := checkSoftDeleteTable(table); err != nil {
		return err
	}
	res, err := s.Db.ExecContext(ctx,
		`UPDATE `+quote(table)+` SET deleted_at = NULL WHERE id::text = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("restore %s/%s: %w", table, id, err)
	}
	return expectOne(res, table, id)
}

func (s *Store) HasColumn(ctx context.Context, table, column string) (bool, error) {
	var n int
	err := s.Db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`,
		table, column).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}

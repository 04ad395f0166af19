package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// DefaultTables is what `check tables` looks at when no names are given.
var DefaultTables = []string{
	"properties", "property_appointments", "property_activity", "advisors",
	"clients", "appointments", "payment_schedules", "client_payments",
	"service_inquiries", "settings", "client_credentials", "system_users",
}

type TableStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Rows   int64  `json:"rows"`
	Err    string `json:"error,omitempty"`
}

// CheckTables never stops at the first failing table.
func (s *Store) CheckTables(ctx context.Context, names []string) []TableStatus {
	out := make([]TableStatus, 0, len(names))
	for _, name := range names {
		st := TableStatus{Name: name}
		exists, err := s.TableExists(ctx, name)
		if err != nil {
			st.Err = err.Error()
			out = append(out, st)
			continue
		}
		st.Exists = exists
		if exists {
			if err := s.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quote(name)).Scan(&st.Rows); err != nil {
				st.Err = err.Error()
			}
		}
		out = append(out, st)
	}
	return out
}

func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.Db.QueryRowContext(ctx,
		`SELECT to_regclass($1) IS NOT NULL`, "public."+quote(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", name, err)
	}
	return exists, nil
}

type IDKind string

const (
	IDKindNone    IDKind = "none"
	IDKindUUID    IDKind = "uuid"
	IDKindBigint  IDKind = "bigint"
	IDKindUnknown IDKind = "unknown"
)

// IDKindOf tells which foreign key type a sample primary key calls for.
func IDKindOf(v string) IDKind {
	if v == "" {
		return IDKindNone
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return IDKindBigint
	}
	if _, err := uuid.Parse(v); err == nil {
		return IDKindUUID
	}
	return IDKindUnknown
}

// SampleID returns "" when the table is empty.
func (s *Store) SampleID(ctx context.Context, table string) (string, error) {
	var id string
	err := s.Db.QueryRowContext(ctx, `SELECT id::text FROM `+quote(table)+` LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sample %s: %w", table, err)
	}
	return id, nil
}

func expectOne(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", table, id, ErrNotFound)
	}
	return nil
}

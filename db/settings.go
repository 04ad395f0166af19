package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const MaintenanceKey = "maintenance_mode"

func (s *Store) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var st Setting
	err := s.Db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&st.Key, &st.Value, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", key, err)
	}
	return &st, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.Db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// Maintenance reports the maintenance flag; a missing row means off.
func (s *Store) Maintenance(ctx context.Context) (bool, error) {
	st, err := s.GetSetting(ctx, MaintenanceKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(st.Value), "true"), nil
}

func (s *Store) SetMaintenance(ctx context.Context, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	return s.PutSetting(ctx, MaintenanceKey, v)
}

func (s *Store) SystemUserByEmail(ctx context.Context, email string) (*SystemUser, error) {
	var u SystemUser
	err := s.Db.QueryRowContext(ctx,
		`SELECT id::text, email, password_hash, role FROM system_users WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return &u, nil
}

func (s *Store) SetCredentialPassword(ctx context.Context, email, hash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.Db.ExecContext(ctx,
		`UPDATE client_credentials SET password_hash = $1 WHERE lower(email) = $2`, hash, email)
	if err != nil {
		return fmt.Errorf("update credentials %s: %w", email, err)
	}
	return expectOne(res, "client_credentials", email)
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (s *Store) ClientByEmail(ctx context.Context, email string) (*Client, error) {
	var c Client
	err := s.Db.QueryRowContext(ctx,
		`SELECT id::text, full_name, email, COALESCE(phone, ''), COALESCE(status, ''), created_at, deleted_at
		 FROM clients WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", email, err)
	}
	return &c, nil
}

func (s *Store) PaymentSchedules(ctx context.Context, clientID string) ([]PaymentSchedule, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, client_id::text, payment_concept, amount, COALESCE(paid_amount, 0), due_date, status
		 FROM payment_schedules
		 WHERE client_id::text = $1
		 ORDER BY due_date ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("payment schedules: %w", err)
	}
	defer rows.Close()

	out := []PaymentSchedule{}
	for rows.Next() {
		var p PaymentSchedule
		if err := rows.Scan(&p.ID, &p.ClientID, &p.PaymentConcept, &p.Amount, &p.PaidAmount, &p.DueDate, &p.Status); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const MaxInquiries = 100

// RecentInquiries returns the newest inquiries first; limit defaults to 10
// and is clamped to MaxInquiries.
func (s *Store) RecentInquiries(ctx context.Context, limit int) ([]ServiceInquiry, error) {
	switch {
	case limit <= 0:
		limit = 10
	case limit > MaxInquiries:
		limit = MaxInquiries
	}
	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, client_name, service_type, status, created_at, deleted_at
		 FROM service_inquiries
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("service inquiries: %w", err)
	}
	defer rows.Close()

	out := []ServiceInquiry{}
	for rows.Next() {
		var q ServiceInquiry
		if err := rows.Scan(&q.ID, &q.ClientName, &q.ServiceType, &q.Status, &q.CreatedAt, &q.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

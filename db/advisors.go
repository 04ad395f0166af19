package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Advisors returns active advisors ordered by name.
func (s *Store) Advisors(ctx context.Context) ([]Advisor, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, name, COALESCE(photo, ''), COALESCE(specialty, '')
		 FROM advisors
		 WHERE deleted_at IS NULL
		 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("advisors: %w", err)
	}
	defer rows.Close()

	out := []Advisor{}
	for rows.Next() {
		var a Advisor
		if err := rows.Scan(&a.ID, &a.Name, &a.Photo, &a.Specialty); err != nil {
			return nil, fmt.Errorf("scan advisor: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type PhotoState string

const (
	PhotoOK          PhotoState = "ok"
	PhotoMissing     PhotoState = "missing"
	PhotoInvalid     PhotoState = "invalid"
	PhotoUnoptimized PhotoState = "unoptimized" // no resize/quality query params
)

type PhotoCheck struct {
	Advisor Advisor    `json:"advisor"`
	State   PhotoState `json:"state"`
}

// AuditPhotos classifies every advisor's photo URL, in input order.
func AuditPhotos(advisors []Advisor) []PhotoCheck {
	out := make([]PhotoCheck, 0, len(advisors))
	for _, a := range advisors {
		out = append(out, PhotoCheck{Advisor: a, State: photoState(a.Photo)})
	}
	return out
}

func photoState(photo string) PhotoState {
	photo = strings.TrimSpace(photo)
	if photo == "" {
		return PhotoMissing
	}
	u, err := url.Parse(photo)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PhotoInvalid
	}
	if u.RawQuery == "" {
		return PhotoUnoptimized
	}
	return PhotoOK
}

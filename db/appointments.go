package db

import (
	"context"
	"fmt"
)

func (s *Store) Appointments(ctx context.Context) ([]Appointment, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, COALESCE(title, ''), COALESCE(contact_name, ''),
		        COALESCE(property_appointment_id::text, ''), start_time
		 FROM appointments
		 WHERE deleted_at IS NULL
		 ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("appointments: %w", err)
	}
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Title, &a.ContactName, &a.PropertyAppointmentID, &a.StartTime); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) PropertyAppointments(ctx context.Context) ([]PropertyAppointment, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT id::text, COALESCE(client_name, ''), COALESCE(client_email, ''),
		        appointment_date, COALESCE(status, '')
		 FROM property_appointments
		 WHERE deleted_at IS NULL
		 ORDER BY appointment_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("property appointments: %w", err)
	}
	defer rows.Close()

	out := []PropertyAppointment{}
	for rows.Next() {
		var p PropertyAppointment
		if err := rows.Scan(&p.ID, &p.ClientName, &p.ClientEmail, &p.AppointmentDate, &p.Status); err != nil {
			return nil, fmt.Errorf("scan property appointment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AppointmentSync compares calendar appointments with the property
// appointments they are supposed to mirror. Only active rows take part.
type AppointmentSync struct {
	Appointments         int                   `json:"appointments"`
	PropertyAppointments int                   `json:"propertyAppointments"`
	Linked               int                   `json:"linked"`
	Orphans              []Appointment         `json:"orphans"`  // no property_appointment_id
	Dangling             []Appointment         `json:"dangling"` // link to a missing or deleted row
	Unsynced             []PropertyAppointment `json:"unsynced"` // nothing links to it
}

func (a AppointmentSync) InSync() bool {
	return len(a.Orphans) == 0 && len(a.Dangling) == 0 && len(a.Unsynced) == 0
}

func CompareAppointments(appts []Appointment, pas []PropertyAppointment) AppointmentSync {
	res := AppointmentSync{Appointments: len(appts), PropertyAppointments: len(pas)}

	known := make(map[string]bool, len(pas))
	for _, p := range pas {
		known[p.ID] = true
	}
	linked := map[string]bool{}
	for _, a := range appts {
		switch {
		case a.PropertyAppointmentID == "":
			res.Orphans = append(res.Orphans, a)
		case !known[a.PropertyAppointmentID]:
			res.Dangling = append(res.Dangling, a)
		default:
			res.Linked++
			linked[a.PropertyAppointmentID] = true
		}
	}
	for _, p := range pas {
		if !linked[p.ID] {
			res.Unsynced = append(res.Unsynced, p)
		}
	}
	return res
}

func (s *Store) AppointmentSync(ctx context.Context) (*AppointmentSync, error) {
	appts, err := s.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	pas, err := s.PropertyAppointments(ctx)
	if err != nil {
		return nil, err
	}
	res := CompareAppointments(appts, pas)
	return &res, nil
}

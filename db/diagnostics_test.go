package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisors(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM advisors\s+WHERE deleted_at IS NULL\s+ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "photo", "specialty"}).
			AddRow("a1", "Laura", "https://cdn.inmo.co/asesores/laura.jpg?width=400", "ventas").
			AddRow("a2", "Mateo", "", "arriendos"))

	got, err := s.Advisors(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Laura", got[0].Name)
	assert.Empty(t, got[1].Photo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPhotos(t *testing.T) {
	checks := AuditPhotos([]Advisor{
		{Name: "ok", Photo: "https://cdn.inmo.co/a.jpg?quality=80"},
		{Name: "missing", Photo: "  "},
		{Name: "relative", Photo: "/Asesores/a.jpg"},
		{Name: "ftp", Photo: "ftp://files/a.jpg"},
		{Name: "plain", Photo: "https://cdn.inmo.co/a.jpg"},
	})

	var states []PhotoState
	for _, c := range checks {
		states = append(states, c.State)
	}
	assert.Equal(t, []PhotoState{PhotoOK, PhotoMissing, PhotoInvalid, PhotoInvalid, PhotoUnoptimized}, states)
	assert.Equal(t, "relative", checks[2].Advisor.Name)
}

func TestCompareAppointments(t *testing.T) {
	appts := []Appointment{
		{ID: "1", PropertyAppointmentID: "pa-1"},
		{ID: "2"},
		{ID: "3", PropertyAppointmentID: "pa-gone"},
	}
	pas := []PropertyAppointment{{ID: "pa-1"}, {ID: "pa-2"}}

	res := CompareAppointments(appts, pas)
	assert.Equal(t, 3, res.Appointments)
	assert.Equal(t, 2, res.PropertyAppointments)
	assert.Equal(t, 1, res.Linked)
	require.Len(t, res.Orphans, 1)
	assert.Equal(t, "2", res.Orphans[0].ID)
	require.Len(t, res.Dangling, 1)
	assert.Equal(t, "3", res.Dangling[0].ID)
	require.Len(t, res.Unsynced, 1)
	assert.Equal(t, "pa-2", res.Unsynced[0].ID)
	assert.False(t, res.InSync())

	ok := CompareAppointments([]Appointment{{ID: "1", PropertyAppointmentID: "pa-1"}}, []PropertyAppointment{{ID: "pa-1"}})
	assert.True(t, ok.InSync())
	assert.True(t, CompareAppointments(nil, nil).InSync())
}

func TestAppointmentSync(t *testing.T) {
	t.Run("reads both tables", func(t *testing.T) {
		s, mock := newMockStore(t)
		when := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`FROM appointments\s+WHERE deleted_at IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "contact_name", "property_appointment_id", "start_time"}).
				AddRow("1", "Visita", "Ana", "pa-1", when).
				AddRow("2", "Llamada", "Luis", "", nil))
		mock.ExpectQuery(`FROM property_appointments\s+WHERE deleted_at IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "client_name", "client_email", "appointment_date", "status"}).
				AddRow("pa-1", "Ana", "ana@inmo.co", when, "scheduled"))

		res, err := s.AppointmentSync(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Linked)
		require.Len(t, res.Orphans, 1)
		assert.Nil(t, res.Orphans[0].StartTime)
		assert.Empty(t, res.Unsynced)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM appointments`).WillReturnError(errors.New("relation does not exist"))

		_, err := s.AppointmentSync(context.Background())
		assert.ErrorContains(t, err, "appointments")
	})
}

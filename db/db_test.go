package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &Store{Db: mockDB}, mock
}

func TestPartition(t *testing.T) {
	now := time.Now()
	rows := []Record{
		{ID: "1"},
		{ID: "2", DeletedAt: &now},
		{ID: "3"},
		{ID: "4", DeletedAt: &now},
		{ID: "5"},
	}

	active, deleted := Partition(rows)

	assert.Equal(t, []string{"1", "3", "5"}, ids(active))
	assert.Equal(t, []string{"2", "4"}, ids(deleted))
	assert.Len(t, rows, len(active)+len(deleted))

	a, d := Partition(nil)
	assert.Empty(t, a)
	assert.Empty(t, d)
}

func ids(rs []Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestSoftDeleteSummary(t *testing.T) {
	t.Run("consistent counts", func(t *testing.T) {
		s, mock := newMockStore(t)
		deletedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id::text, deleted_at FROM "property_appointments" ORDER BY created_at DESC`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "deleted_at"}).
				AddRow("a1", nil).
				AddRow("a2", deletedAt).
				AddRow("a3", nil))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "property_appointments" WHERE deleted_at IS NULL`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		sum, err := s.SoftDeleteSummary(context.Background(), "property_appointments")
		require.NoError(t, err)

		assert.Equal(t, 2, sum.Active)
		assert.Equal(t, 1, sum.Deleted)
		assert.Equal(t, 3, sum.Total)
		assert.True(t, sum.Consistent)
		require.Len(t, sum.Recent, 3)
		require.NotNil(t, sum.Recent[1].DeletedAt)
		assert.True(t, deletedAt.Equal(*sum.Recent[1].DeletedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("discrepancy is reported", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT id::text, deleted_at FROM "clients"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "deleted_at"}).AddRow("c1", nil))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "clients" WHERE deleted_at IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		sum, err := s.SoftDeleteSummary(context.Background(), "clients")
		require.NoError(t, err)
		assert.False(t, sum.Consistent)
		assert.Equal(t, 4, sum.FilteredActive)
	})

	t.Run("unknown table never reaches the database", func(t *testing.T) {
		s, mock := newMockStore(t)
		_, err := s.SoftDeleteSummary(context.Background(), "users; DROP TABLE clients")
		assert.ErrorIs(t, err, ErrUnknownTable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	t.Run("soft delete active row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clients" SET deleted_at = NOW() WHERE id::text = $1 AND deleted_at IS NULL`)).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.SoftDelete(context.Background(), "clients", "c1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted row is not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE "clients" SET deleted_at = NOW\(\)`).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.SoftDelete(context.Background(), "clients", "c1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("restore", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "advisors" SET deleted_at = NULL WHERE id::text = $1 AND deleted_at IS NOT NULL`)).
			WithArgs("7").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Restore(context.Background(), "advisors", "7"))
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		s, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectExec(`UPDATE "advisors"`).WillReturnError(boom)

		err := s.Restore(context.Background(), "advisors", "7")
		assert.ErrorIs(t, err, boom)
	})
}

func TestHasColumn(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("appointments", "deleted_at").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := s.HasColumn(context.Background(), "appointments", "deleted_at")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckTables(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass($1) IS NOT NULL`)).
		WithArgs(`public."properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "properties"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(63))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass($1) IS NOT NULL`)).
		WithArgs(`public."inquiries"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass($1) IS NOT NULL`)).
		WithArgs(`public."settings"`).
		WillReturnError(errors.New("permission denied"))

	got := s.CheckTables(context.Background(), []string{"properties", "inquiries", "settings"})

	require.Len(t, got, 3)
	assert.Equal(t, TableStatus{Name: "properties", Exists: true, Rows: 63}, got[0])
	assert.Equal(t, TableStatus{Name: "inquiries"}, got[1])
	assert.Contains(t, got[2].Err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIDKindOf(t *testing.T) {
	assert.Equal(t, IDKindNone, IDKindOf(""))
	assert.Equal(t, IDKindBigint, IDKindOf("63"))
	assert.Equal(t, IDKindUUID, IDKindOf("8f14e45f-ceea-467f-a5b4-1f3e8f9c1a2b"))
	assert.Equal(t, IDKindUnknown, IDKindOf("CA-001"))
}

func TestSampleID(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id::text FROM "advisors" LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := s.SampleID(context.Background(), "advisors")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestListProperties(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, code, title, type, status, price, created_at, deleted_at FROM properties ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "title", "type", "status", "price", "created_at", "deleted_at"}).
			AddRow(int64(1), "AP-001", "Apartamento Laureles", "apartment", "available", "350000000.00", created, nil).
			AddRow(int64(2), nil, "Casa Envigado", "house", "sold", "820000000", created, nil))

	props, err := s.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 2)

	require.NotNil(t, props[0].Code)
	assert.Equal(t, "AP-001", *props[0].Code)
	assert.Nil(t, props[1].Code)
	assert.True(t, decimal.RequireFromString("820000000").Equal(props[1].Price))
}

func TestCodeTx(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("property_code:CA").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT code FROM properties WHERE code LIKE \$1`).
		WithArgs("CA-%").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("CA-001").AddRow("CA-007"))
	mock.ExpectExec(`UPDATE properties SET code = \$1 WHERE id = \$2`).
		WithArgs("CA-008", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.BeginCodeTx(ctx, "CA")
	require.NoError(t, err)
	codes, err := tx.Codes(ctx, "CA")
	require.NoError(t, err)
	assert.Equal(t, []string{"CA-001", "CA-007"}, codes)
	require.NoError(t, tx.SetCode(ctx, 12, "CA-008"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSchedules(t *testing.T) {
	s, mock := newMockStore(t)
	due := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM payment_schedules`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "payment_concept", "amount", "paid_amount", "due_date", "status"}).
			AddRow("p1", "c1", "Arriendo junio", "2500000", "0", due, "pending"))

	got, err := s.PaymentSchedules(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Arriendo junio", got[0].PaymentConcept)
	assert.True(t, decimal.NewFromInt(2500000).Equal(got[0].Amount))
}

func TestClientByEmail_MixedCaseStored(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM clients WHERE lower\(email\) = \$1`).
		WithArgs("ana@inmo.co").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone", "status", "created_at", "deleted_at"}).
			AddRow("c-1", "Ana Ruiz", "Ana@Inmo.co", "", "active", time.Now(), nil))

	c, err := s.ClientByEmail(context.Background(), "Ana@Inmo.co")
	require.NoError(t, err)
	assert.Equal(t, "Ana@Inmo.co", c.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSystemUserByEmail_CaseInsensitive(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM system_users WHERE lower\(email\) = \$1`).
		WithArgs("admin@inmo.co").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
			AddRow("u-1", "Admin@Inmo.co", "$2a$10$x", "admin"))

	u, err := s.SystemUserByEmail(context.Background(), "ADMIN@inmo.co")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
}

func TestRecentInquiries_Limit(t *testing.T) {
	for _, tt := range []struct {
		in, want int
	}{{0, 10}, {-3, 10}, {25, 25}, {100, 100}, {500, 100}} {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM service_inquiries`).
			WithArgs(tt.want).
			WillReturnRows(sqlmock.NewRows([]string{"id", "client_name", "service_type", "status", "created_at", "deleted_at"}))

		_, err := s.RecentInquiries(context.Background(), tt.in)
		require.NoError(t, err, tt.in)
		assert.NoError(t, mock.ExpectationsWereMet(), tt.in)
	}
}

func TestClientByEmail_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM clients WHERE lower\(email\) = \$1`).
		WithArgs("carlos@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.ClientByEmail(context.Background(), " Carlos@Test.com ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMaintenance(t *testing.T) {
	t.Run("missing row means off", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT key, value, updated_at FROM settings WHERE key = \$1`).
			WithArgs(MaintenanceKey).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

		on, err := s.Maintenance(context.Background())
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("set and read", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO settings`).
			WithArgs(MaintenanceKey, "true").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FROM settings WHERE key`).
			WithArgs(MaintenanceKey).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow(MaintenanceKey, "TRUE", time.Now()))

		require.NoError(t, s.SetMaintenance(context.Background(), true))
		on, err := s.Maintenance(context.Background())
		require.NoError(t, err)
		assert.True(t, on)
	})
}

func TestSetCredentialPassword(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE client_credentials SET password_hash = \$1 WHERE lower\(email\) = \$2`).
		WithArgs("$2a$10$hash", "diego@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetCredentialPassword(context.Background(), "Diego@Example.com", "$2a$10$hash")
	assert.ErrorIs(t, err, ErrNotFound)
}

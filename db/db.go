package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownTable = errors.New("unknown table")
)

type Store struct {
	Db *sql.DB
}

func Open(ctx context.Context, url string) (*Store, error) {
	conn, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{Db: conn}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.Db.Close()
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

type Property struct {
	ID        int64           `json:"id"`
	Code      *string         `json:"code"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
}

type Client struct {
	ID        string     `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type PaymentSchedule struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"clientId"`
	PaymentConcept string          `json:"paymentConcept"`
	Amount         decimal.Decimal `json:"amount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	DueDate        time.Time       `json:"dueDate"`
	Status         string          `json:"status"`
}

type ServiceInquiry struct {
	ID          string     `json:"id"`
	ClientName  string     `json:"clientName"`
	ServiceType string     `json:"serviceType"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Advisor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Photo     string `json:"photo"`
	Specialty string `json:"specialty"`
}

type Appointment struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	ContactName           string     `json:"contactName"`
	PropertyAppointmentID string     `json:"propertyAppointmentId"`
	StartTime             *time.Time `json:"startTime"`
}

type PropertyAppointment struct {
	ID              string     `json:"id"`
	ClientName      string     `json:"clientName"`
	ClientEmail     string     `json:"clientEmail"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	Status          string     `json:"status"`
}

type SystemUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost matches the hashes already stored in client_credentials.
const Cost = 10

var ErrEmptyPassword = errors.New("empty password")

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("hash error: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UpdateStatement is the SQL an operator can paste into the hosted console.
func UpdateStatement(email, hash string) string {
	return fmt.Sprintf("UPDATE client_credentials\nSET password_hash = '%s'\nWHERE lower(email) = '%s';",
		sqlQuote(hash), sqlQuote(strings.ToLower(email)))
}

func sqlQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

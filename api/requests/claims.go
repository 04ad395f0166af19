package requests

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Admin() bool { return c.Role == "admin" }

type ctxKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func GetClaims(r *http.Request) *Claims {
	if c, ok := r.Context().Value(ctxKey{}).(*Claims); ok {
		return c
	}
	return nil
}

type ClaimsProvider struct {
	Secret []byte
}

func (p ClaimsProvider) Parse(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return p.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return tok.Claims.(*Claims), nil
}

// FromRequest takes the JWT from "Authorization: Bearer <token>" or ?token=
// (browsers cannot set headers on websocket upgrades).
func (p ClaimsProvider) FromRequest(r *http.Request) (userID, role string, err error) {
	tokenStr := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	}
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return "", "", errors.New("missing token")
	}
	cl, err := p.Parse(tokenStr)
	if err != nil {
		return "", "", err
	}
	return cl.UserID, cl.Role, nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/barretodotcom/inmocrm/api/requests"
	"github.com/barretodotcom/inmocrm/api/utils"
	"github.com/barretodotcom/inmocrm/auth"
	"github.com/barretodotcom/inmocrm/breadcrumbs"
	"github.com/barretodotcom/inmocrm/codes"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/payments"
	"github.com/barretodotcom/inmocrm/ws"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type Server struct {
	Store     *db.Store
	JwtSecret []byte
	Hub       *ws.Hub
	Log       *zap.Logger
	Labels    breadcrumbs.Labels
	Now       func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

/* ==========================
   REQUESTS / RESPONSES
========================== */

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Exp    int64  `json:"exp"`
}

type maintenanceReq struct {
	Enabled *bool  `json:"enabled"`
	Message string `json:"message"`
}

// payload WS
type WSMessage struct {
	Type    string `json:"type"`
	Enabled *bool  `json:"enabled,omitempty"`
	Message string `json:"message,omitempty"`
	Table   string `json:"table,omitempty"`
	ID      string `json:"id,omitempty"`
	Action  string `json:"action,omitempty"`
	By      string `json:"by,omitempty"`
}

/* ==========================
   AUTH
========================== */

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HttpError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.HttpError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := s.Store.SystemUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.Log.Error("login lookup failed", zap.Error(err))
		}
		utils.HttpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		utils.HttpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	exp := s.now().Add(24 * time.Hour)
	tokenStr, err := s.SignJWT(u.ID, u.Email, u.Role, exp)
	if err != nil {
		utils.HttpError(w, http.StatusInternalServerError, "jwt error")
		return
	}
	s.Log.Info("login", zap.String("user_id", u.ID), zap.String("role", u.Role))
	utils.JsonOK(w, loginResp{Token: tokenStr, UserID: u.ID, Role: u.Role, Exp: exp.Unix()})
}

func (s *Server) SignJWT(userID, email, role string, exp time.Time) (string, error) {
	claims := requests.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    "inmocrm-api",
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.JwtSecret)
}

func (s *Server) RequireAuth(next http.Handler) http.Handler {
	prov := requests.ClaimsProvider{Secret: s.JwtSecret}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := r.Header.Get("Authorization")
		if hdr == "" || !strings.HasPrefix(hdr, "Bearer ") {
			utils.HttpError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}
		claims, err := prov.Parse(strings.TrimPrefix(hdr, "Bearer "))
		if err != nil {
			utils.HttpError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(requests.WithClaims(r.Context(), claims)))
	})
}

func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := requests.GetClaims(r)
		if claims == nil || !claims.Admin() {
			utils.HttpError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

/* ==========================
   SOFT DELETE
========================== */

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrUnknownTable):
		utils.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		utils.HttpError(w, http.StatusNotFound, err.Error())
	default:
		s.Log.Error("store error", zap.String("path", r.URL.Path), zap.Error(err))
		utils.HttpError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) SoftDeleteReport(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Store.SoftDeleteSummary(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	if !sum.Consistent {
		s.Log.Warn("soft delete discrepancy",
			zap.String("table", sum.Table), zap.Int("active", sum.Active), zap.Int("filtered", sum.FilteredActive))
	}
	utils.JsonOK(w, sum)
}

func (s *Server) SoftDeleteRecord(w http.ResponseWriter, r *http.Request) {
	s.changeRecord(w, r, "deleted", s.Store.SoftDelete)
}

func (s *Server) RestoreRecord(w http.ResponseWriter, r *http.Request) {
	s.changeRecord(w, r, "restored", s.Store.Restore)
}

func (s *Server) changeRecord(w http.ResponseWriter, r *http.Request, action string,
	op func(ctx context.Context, table, id string) error) {
	table, id := chi.URLParam(r, "table"), chi.URLParam(r, "id")
	if err := op(r.Context(), table, id); err != nil {
		s.storeError(w, r, err)
		return
	}

	by := ""
	if c := requests.GetClaims(r); c != nil {
		by = c.UserID
	}
	s.Log.Info("record "+action, zap.String("table", table), zap.String("id", id), zap.String("by", by))
	s.Hub.Broadcast(ws.BroadcastOpts{Roles: []string{"admin"}}, WSMessage{
		Type: "record.changed", Table: table, ID: id, Action: action, By: by,
	})
	utils.JsonOK(w, map[string]string{"status": action})
}

/* ==========================
   REPORTS
========================== */

type codesResp struct {
	Coverage codes.CoverageStats `json:"coverage"`
	ByType   map[string]int      `json:"byType"`
	Plan     []codes.Assignment  `json:"plan"`
}

func (s *Server) CodesReport(w http.ResponseWriter, r *http.Request) {
	props, err := s.Store.ListProperties(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	cands := codes.FromProperties(props)
	plan := []codes.Assignment{}
	for _, a := range codes.Plan(cands) {
		if !a.Reused {
			plan = append(plan, a)
		}
	}
	utils.JsonOK(w, codesResp{
		Coverage: codes.Coverage(cands),
		ByType:   codes.GroupByType(cands),
		Plan:     plan,
	})
}

type paymentsResp struct {
	Client    *db.Client           `json:"client"`
	Schedules []db.PaymentSchedule `json:"schedules"`
	Summary   payments.Summary     `json:"summary"`
}

func (s *Server) PaymentsReport(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.HttpError(w, http.StatusBadRequest, "email is required")
		return
	}
	c, err := s.Store.ClientByEmail(r.Context(), email)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	schedules, err := s.Store.PaymentSchedules(r.Context(), c.ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	utils.JsonOK(w, paymentsResp{Client: c, Schedules: schedules, Summary: payments.Summarize(schedules, s.now())})
}

func (s *Server) InquiriesReport(w http.ResponseWriter, r *http.Request) {
	// RecentInquiries applies the default and the cap
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.Store.RecentInquiries(r.Context(), limit)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	statuses := make([]string, 0, len(list))
	for _, q := range list {
		statuses = append(statuses, q.Status)
	}
	utils.JsonOK(w, map[string]any{
		"data":     list,
		"byStatus": payments.GroupByStatus(statuses),
	})
}

func (s *Server) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	trail := breadcrumbs.Build(r.URL.Query().Get("path"), s.Labels)
	utils.JsonOK(w, map[string]any{
		"visible": breadcrumbs.Visible(trail),
		"items":   trail,
	})
}

/* ==========================
   MAINTENANCE MODE
========================== */

func (s *Server) MaintenanceEvent(r *http.Request) (*WSMessage, error) {
	on, err := s.Store.Maintenance(r.Context())
	if err != nil {
		return nil, err
	}
	return &WSMessage{Type: "maintenance.changed", Enabled: &on}, nil
}

func (s *Server) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	ev, err := s.MaintenanceEvent(r)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	utils.JsonOK(w, map[string]bool{"enabled": *ev.Enabled})
}

func (s *Server) PutMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		utils.HttpError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	if err := s.Store.SetMaintenance(r.Context(), *req.Enabled); err != nil {
		s.storeError(w, r, err)
		return
	}

	claims := requests.GetClaims(r)
	s.Log.Info("maintenance mode changed", zap.Bool("enabled", *req.Enabled), zap.String("by", claims.UserID))
	n := s.Hub.Broadcast(ws.BroadcastOpts{}, WSMessage{
		Type: "maintenance.changed", Enabled: req.Enabled, Message: req.Message, By: claims.UserID,
	})
	utils.JsonOK(w, map[string]any{"enabled": *req.Enabled, "notified": n})
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/infra/logging"
	"restaurant-offer-service/internal/infra/metrics"
	"restaurant-offer-service/internal/usecase"
)

// API field names are camelCase; the store rows are snake_case. The
// translation happens here and nowhere else.

type registerRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type registerResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type verifyResponse struct {
	Valid       bool       `json:"valid"`
	Reason      string     `json:"reason,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
}

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	Success bool      `json:"success"`
	UsedAt  time.Time `json:"usedAt"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type entryDTO struct {
	ID          int64      `json:"id"`
	PhoneNumber string     `json:"phoneNumber"`
	Code        string     `json:"code"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	Used        bool       `json:"used"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
}

type listResponse struct {
	Entries []entryDTO `json:"entries"`
	Total   int        `json:"total"`
	Active  int        `json:"active"`
	Used    int        `json:"used"`
	Expired int        `json:"expired"`
}

type unsubscribeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type unsubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func isPhoneValidationErr(err error) bool {
	return errors.Is(err, domain.ErrPhoneFormat) ||
		errors.Is(err, domain.ErrPhoneRepeated) ||
		errors.Is(err, domain.ErrPhoneSequential) ||
		errors.Is(err, domain.ErrPhoneLowVariety)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.IncRegistration("error")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.allowRegistration(ctx, req.PhoneNumber) {
		metrics.IncRegistration("rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	entry, err := s.offerUC.Register(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		metrics.IncRegistration("ok")
		writeJSON(w, http.StatusOK, registerResponse{Success: true, Code: entry.Code, ExpiresAt: entry.ExpiresAt})
	case errors.Is(err, domain.ErrInvalidArgument):
		metrics.IncRegistration("invalid_phone")
		writeError(w, http.StatusBadRequest, "phoneNumber is required")
	case isPhoneValidationErr(err):
		metrics.IncRegistration("invalid_phone")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		metrics.IncRegistration("duplicate")
		writeError(w, http.StatusConflict, "this phone number already has an active code")
	default:
		metrics.IncRegistration("error")
		l.Error().Err(err).Msg("registration failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// handleVerify serves the public confirmation page and staff pre-checks.
// Missing or unknown codes are a 200 with valid:false, not an error: the
// page renders both outcomes.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		metrics.IncVerification("invalid_request")
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "invalid_request"})
		return
	}

	res, err := s.offerUC.Verify(ctx, code)
	if err != nil {
		l.Error().Err(err).Msg("verification failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	metrics.IncVerification(string(res.Status))

	switch res.Status {
	case model.StatusValid:
		writeJSON(w, http.StatusOK, verifyResponse{
			Valid:       true,
			PhoneNumber: res.PhoneNumber,
			CreatedAt:   &res.CreatedAt,
			ExpiresAt:   &res.ExpiresAt,
		})
	case model.StatusUsed:
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: string(model.StatusUsed), UsedAt: res.UsedAt})
	case model.StatusExpired:
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: string(model.StatusExpired), ExpiresAt: &res.ExpiresAt})
	default:
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: string(usecase.StatusNotFound)})
	}
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		metrics.IncRedemption("error")
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	usedAt, err := s.offerUC.Redeem(ctx, req.Code)
	switch {
	case err == nil:
		metrics.IncRedemption("ok")
		writeJSON(w, http.StatusOK, redeemResponse{Success: true, UsedAt: usedAt})
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncRedemption("not_found")
		writeError(w, http.StatusNotFound, "code not found")
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		metrics.IncRedemption("already_used")
		writeError(w, http.StatusConflict, "code already used")
	case errors.Is(err, domain.ErrCodeExpired):
		metrics.IncRedemption("expired")
		writeError(w, http.StatusGone, "code expired")
	case errors.Is(err, domain.ErrInvalidArgument):
		metrics.IncRedemption("error")
		writeError(w, http.StatusBadRequest, "code is required")
	default:
		metrics.IncRedemption("error")
		l.Error().Err(err).Msg("redemption failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	token, err := s.auth.Login(req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	entries, stats, err := s.adminUC.ListAll(ctx)
	if err != nil {
		l.Error().Err(err).Msg("listing entries failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	dtos := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryDTO{
			ID:          e.ID,
			PhoneNumber: e.PhoneNumber,
			Code:        e.Code,
			CreatedAt:   e.CreatedAt,
			ExpiresAt:   e.ExpiresAt,
			Used:        e.Used,
			UsedAt:      e.UsedAt,
		})
	}
	writeJSON(w, http.StatusOK, listResponse{
		Entries: dtos,
		Total:   stats.Total,
		Active:  stats.Active,
		Used:    stats.Used,
		Expired: stats.Expired,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	phones, err := s.adminUC.ExportUniquePhones(ctx)
	if err != nil {
		l.Error().Err(err).Msg("phone export failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="offer-phones.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("phone_number\n"))
	if len(phones) > 0 {
		_, _ = w.Write([]byte(strings.Join(phones, "\n") + "\n"))
	}
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PhoneNumber) == "" {
		writeError(w, http.StatusBadRequest, "phoneNumber is required")
		return
	}

	removed, err := s.adminUC.Unsubscribe(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, unsubscribeResponse{
			Success: true,
			Message: "all entries for this phone number have been removed",
			Removed: removed,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no entries found for this phone number")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "phoneNumber is required")
	default:
		l.Error().Err(err).Msg("unsubscribe failed")
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// Package adapthttp implements the development backend's HTTP adapter.
package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

var errAwaitingApproval = errors.New("account is awaiting admin approval")

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, acct, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, devapi.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if acct.Role == domain.RoleProfessional && acct.ProfessionalID != nil {
		status, err := s.store.ProfessionalStatus(r.Context(), *acct.ProfessionalID)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		if status != domain.ProfessionalActive {
			writeError(w, http.StatusForbidden, errAwaitingApproval)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.auth.TTL().Seconds()),
	})

	s.log.Info("login", zap.Int64("user_id", acct.ID), zap.String("role", string(acct.Role)))
	writeJSON(w, http.StatusOK, map[string]any{
		"token":          token,
		"userType":       acct.Role,
		"userId":         acct.ID,
		"professionalId": acct.ProfessionalID,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acct, err := s.auth.Register(r.Context(), req.FullName, req.Email, req.Password, s.opts.RequireApproval)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.log.Info("registered", zap.Int64("user_id", acct.ID), zap.Bool("requires_approval", s.opts.RequireApproval))
	msg := "Registration successful."
	if s.opts.RequireApproval {
		msg = "Registration received. An admin will review your account."
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":           msg,
		"requires_approval": s.opts.RequireApproval,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := requestToken(r); token != "" {
		if err := s.auth.Logout(r.Context(), token); err != nil {
			s.log.Debug("logout of invalid token", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

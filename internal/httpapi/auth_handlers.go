package httpapi

import (
	"net/http"
	"time"

	"lodgia.org/internal/audit"
	"lodgia.org/internal/auth"
	"lodgia.org/internal/payload"
	"lodgia.org/internal/rental"
)

type credentialsResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *rental.User `json:"user"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, _ := PayloadFromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.svc.Register(r.Context(), rental.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	token, expiresAt, err := a.issuer.Issue(user.ID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	writeJSON(w, http.StatusCreated, credentialsResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, _ := PayloadFromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	token, expiresAt, err := a.issuer.Issue(user.ID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": user.ID,
	})

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       principal.ID,
		"role":     principal.Role,
		"username": principal.Username,
		"email":    principal.Email,
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.ListUsers(r.Context())
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

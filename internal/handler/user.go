package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

// Accounts is what UserHandler needs from the service layer.
type Accounts interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	GetProfile(ctx context.Context, email string, caller auth.Identity) (*model.Profile, error)
	UpdateProfile(ctx context.Context, email string, fields map[string]any, caller auth.Identity) (*model.Profile, error)
}

var _ Accounts = (*service.AccountService)(nil)

// UserHandler serves registration, login and profiles.
type UserHandler struct {
	accounts Accounts
	logger   *slog.Logger
}

func NewUserHandler(accounts Accounts, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /user/register
// REQUEST BODY: {"email": "ada@example.com", "password": "..."}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.accounts.Register(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "User created"})
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /user/login
//
// The token is returned in the body and also set as an HttpOnly cookie, so
// browser clients never need to touch it from script.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
		MaxAge:   int(res.ExpiresIn),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, res)
}

// HandleGetProfile returns a profile; dob and address only to its owner.
//
// HTTP: GET /user/{email}/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.GetProfile(r.Context(), chi.URLParam(r, "email"), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdateProfile replaces the caller's own profile.
//
// HTTP: PUT /user/{email}/profile
// REQUEST BODY: {"firstName": "...", "lastName": "...", "dob": "YYYY-MM-DD", "address": "..."}
//
// The body is decoded loosely into a map; type checks happen in the service.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	email := chi.URLParam(r, "email")

	// A missing or malformed body reads as empty; the service then reports
	// the missing keys after its identity checks.
	fields := map[string]any{}
	if err := decodeJSON(w, r, &fields); err != nil {
		fields = map[string]any{}
	}

	p, err := h.accounts.UpdateProfile(r.Context(), email, fields, caller)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

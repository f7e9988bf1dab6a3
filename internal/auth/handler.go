package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GRuizV/socialapi/internal/middleware"
	"github.com/GRuizV/socialapi/internal/models"
	"github.com/GRuizV/socialapi/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// TokenRevoker denylists a token for the remainder of its validity.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Handler holds the user and authentication HTTP handlers.
type Handler struct {
	users   UserStore
	tokens  *TokenIssuer
	revoker TokenRevoker
}

func NewHandler(users UserStore, tokens *TokenIssuer, revoker TokenRevoker) *Handler {
	return &Handler{users: users, tokens: tokens, revoker: revoker}
}

// Register creates a new user. POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "a valid email is required")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "password is required")
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, hashed)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			middleware.ErrorResponse(w, http.StatusConflict, "email is already registered")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not create user")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token. POST /login.
// Unknown email and wrong password are indistinguishable on the wire.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := CheckPassword(req.Password, user.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	middleware.JSONResponse(w, http.StatusAccepted, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Logout revokes the presented token until it would have expired on its
// own. POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.revoker.Revoke(r.Context(), claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not revoke token")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Get returns one user by id. GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "user '"+id+"' was not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// List returns all users. GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, users)
}

// Delete removes the caller's own account; posts and votes cascade.
// DELETE /users/{id}. A missing user reports 404 before ownership is
// considered.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := middleware.UserFrom(r.Context())
	if caller == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if _, err := h.users.GetUserByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "user '"+id+"' doesn't exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	if id != caller.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "only the account owner can delete it")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "user '"+id+"' doesn't exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

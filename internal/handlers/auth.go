package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/httpx"
	"github.com/tecnicanomade/riego/internal/models"
	"github.com/tecnicanomade/riego/internal/validation"
)

type AuthHandler struct {
	db      *gorm.DB
	authCfg auth.Config
}

func NewAuthHandler(db *gorm.DB, authCfg auth.Config) *AuthHandler {
	return &AuthHandler{db: db, authCfg: authCfg}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login verifies credentials and issues a token. Unknown email, wrong
// password and inactive account all answer the same way.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, err)
		return
	}
	if err != nil || !user.Active || !auth.CheckPassword(req.Password, user.Password) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	token, err := auth.GenerateToken(h.authCfg, &user)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Register creates a client account and logs it in. The role is fixed to
// client regardless of input.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", v)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	user := models.User{
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
		Role:     models.RoleClient,
		Active:   true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest, "email_taken", nil)
			return
		}
		httpx.Error(w, err)
		return
	}

	token, err := auth.GenerateToken(h.authCfg, &user)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.ErrUnauthenticated)
		return
	}
	var user models.User
	if err := h.db.First(&user, identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitehost/api/v1/middleware"
	"sitehost/internal/auth"
	"sitehost/internal/config"
	"sitehost/internal/httpx"
	"sitehost/internal/model"
	"sitehost/internal/session"
)

// Handler serves account registration and login
type Handler struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *session.Store
}

// NewHandler creates an auth handler
func NewHandler(db *gorm.DB, cfg *config.Config, sessions *session.Store) *Handler {
	return &Handler{db: db, cfg: cfg, sessions: sessions}
}

// RegisterRequest is the request body for POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("username and password are required"))
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to hash password", err))
		return
	}

	user := model.User{Username: req.Username, PasswordHash: hash}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.FailErr(c, httpx.ErrAlreadyExists("username already taken"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create user", err))
		return
	}

	httpx.OK(c, user)
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer credential
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("username and password are required"))
		return
	}

	var user model.User
	err := h.db.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid credentials"))
		return
	}
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query user", err))
		return
	}

	if user.Status != model.UserStatusActive {
		httpx.FailErr(c, httpx.ErrUnauthorized("account disabled"))
		return
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid credentials"))
		return
	}

	ttl := time.Duration(h.cfg.JWT.ExpireMinutes) * time.Minute
	sessionID := uuid.NewString()
	expireAt := time.Now().Add(ttl)

	token, err := auth.GenerateToken(user.ID, user.Username, sessionID, expireAt, h.cfg.JWT.Issuer)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to issue token", err))
		return
	}

	if err := h.sessions.Put(c.Request.Context(), sessionID, user.ID, ttl); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to store session", err))
		return
	}

	httpx.OK(c, LoginResponse{Token: token, User: user})
}

// Logout handles POST /auth/logout, revoking the current session
func (h *Handler) Logout(c *gin.Context) {
	sid := c.GetString("sid")
	if sid != "" {
		if err := h.sessions.Revoke(c.Request.Context(), sid); err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to revoke session", err))
			return
		}
	}
	httpx.OK(c, gin.H{"revoked": true})
}

// Me handles GET /me
func (h *Handler) Me(c *gin.Context) {
	httpx.OK(c, gin.H{
		"uid":      middleware.CurrentUser(c),
		"username": c.GetString("username"),
	})
}

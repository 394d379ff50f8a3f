package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/interfaces/http/middleware"
	"github.com/erp/client/internal/interfaces/http/mockdb"
)

// LoginRequest is the body of POST /erp/auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthHandler issues tokens for the mock logins
type AuthHandler struct {
	BaseHandler
	db     *mockdb.DB
	issuer *auth.Issuer
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(db *mockdb.DB, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{BaseHandler: NewBaseHandler(), db: db, issuer: issuer}
}

// Login exchanges a username and password for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}
	cred, ok := h.db.Authenticate(req.Username, req.Password)
	if !ok {
		h.Unauthorized(c, "Invalid username or password")
		return
	}

	token, expiresAt, err := h.issuer.Issue(auth.IssueInput{
		UserID:   strconv.FormatInt(cred.UserID, 10),
		Username: req.Username,
		RoleIDs:  cred.Roles,
	})
	if err != nil {
		h.BadRequest(c, "Could not issue token")
		return
	}
	h.Success(c, "Login successful", LoginResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// Me returns the claims of the caller's token
func (h *AuthHandler) Me(c *gin.Context) {
	h.Success(c, "", middleware.GetClaims(c))
}

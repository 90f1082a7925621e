package handlers

import (
	"net/http"
	"strings"

	"tajriba/middleware"
	"tajriba/services/user"
	"tajriba/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler covers registration, sign-in and token revocation.
type UserHandler struct {
	Svc    user.UserService
	Logger *zap.Logger
}

func NewUserHandler(svc user.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// RegisterHandler handles POST /api/users/register.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid registration payload", err.Error())
		return
	}

	resp, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case user.ErrEmailTaken:
			utils.JSONError(c, http.StatusConflict, "email already registered", "")
		case user.ErrInvalidRole:
			utils.JSONError(c, http.StatusBadRequest, "role must be 'tourist' or 'host'", "")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "registration failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler handles POST /api/users/login.
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid login payload", err.Error())
		return
	}

	resp, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			utils.JSONError(c, http.StatusUnauthorized, "invalid email or password", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "sign-in failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler handles POST /api/users/logout. It revokes the bearer
// token that authenticated the request.
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing bearer token", "")
		return
	}
	if err := h.Svc.RevokeToken(c.Request.Context(), token); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "logout failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// MeHandler handles GET /api/users/me.
func (h *UserHandler) MeHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	u, err := h.Svc.GetByID(c.Request.Context(), principal.ID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "account not found", "")
		return
	}
	c.JSON(http.StatusOK, u)
}

type fcmTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateFCMTokenHandler handles PUT /api/users/me/fcm-token.
func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid token payload", err.Error())
		return
	}
	if err := h.Svc.UpdateFCMToken(c.Request.Context(), principal.ID, req.Token); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "could not save device token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device token updated"})
}

type gatewayRequest struct {
	CustomerID string `json:"customer_id"`
	AccountID  string `json:"account_id"`
}

// UpdateGatewayHandler handles PUT /api/users/me/gateway. Tourists save
// the gateway customer id their charges run against; hosts save the
// connected-account id their payouts land in.
func (h *UserHandler) UpdateGatewayHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req gatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid gateway payload", err.Error())
		return
	}
	if req.CustomerID == "" && req.AccountID == "" {
		utils.JSONError(c, http.StatusBadRequest, "customer_id or account_id is required", "")
		return
	}
	if err := h.Svc.UpdateGatewayIDs(c.Request.Context(), principal.ID, req.CustomerID, req.AccountID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "could not save gateway ids", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "gateway ids updated"})
}

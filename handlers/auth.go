package handlers

import (
	"errors"
	"net/http"

	"luxstay/models"
	"luxstay/services/api"
	"luxstay/services/auth"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves sign-in, sign-out and the session state.
type AuthHandler struct {
	Auth auth.AuthService
	Gate *auth.Gate
}

func NewAuthHandler(svc auth.AuthService, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{Auth: svc, Gate: gate}
}

// LoginHandler signs the guest in and returns the next view.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, auth.MsgMissingFields, err.Error())
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, auth.ErrInvalidInput):
		respondError(c, err, http.StatusBadRequest, auth.MsgMissingFields)
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, auth.MsgInvalidCredentials, "")
	default:
		// A 401 from the login endpoint is a failed sign-in, not a lost session.
		utils.JSONError(c, statusFor(err, http.StatusBadGateway), api.UserMessage(err, auth.MsgLoginFailed), err.Error())
	}
}

// LogoutHandler clears local credentials. It never fails.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	next := h.Auth.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"next": next})
}

// SessionHandler reports the gate state of the stored session.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	m := h.Gate.Mount(c.Request.Context())
	resp := gin.H{"state": m.State()}
	if sess := m.Session(); sess.Authenticated() {
		resp["user"] = sess.User
	}
	c.JSON(http.StatusOK, resp)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"luxstay/services/api"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as a JSON error. A lost session always becomes a
// 401 pointing at the entry view; other failures use the status derived
// from the error, or fallbackStatus.
func respondError(c *gin.Context, err error, fallbackStatus int, fallbackMsg string) {
	if errors.Is(err, api.ErrSessionInvalid) || errors.Is(err, api.ErrUnauthorized) {
		getLogger(c).Info("Session no longer valid", zap.Error(err))
		utils.SessionExpired(c)
		return
	}
	utils.JSONError(c, statusFor(err, fallbackStatus), api.UserMessage(err, fallbackMsg), err.Error())
}

func statusFor(err error, fallback int) int {
	var te *api.TransportError
	if errors.As(err, &te) {
		if te.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	if errors.Is(err, api.ErrMalformedResponse) {
		return http.StatusBadGateway
	}
	return fallback
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name, c.Param(name))
		return 0, false
	}
	return id, true
}

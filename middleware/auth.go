package middleware

import (
	"net/http"
	"strings"

	"luxstay/services/auth"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
)

// SessionKey is where the gate stores the loaded session in the gin context.
const SessionKey = "session"

// SessionGate lets a protected view mount only with an authenticated
// session. Browsers are redirected to the entry view with 303; JSON
// clients get a 401 carrying the redirect target. A session load that does
// not finish in time answers 202 with the loading state.
func SessionGate(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := gate.Mount(c.Request.Context())
		switch m.State() {
		case auth.GateAuthenticated:
			c.Set(SessionKey, m.Session())
			c.Next()
		case auth.GateLoading:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"state": auth.GateLoading})
		default:
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
					Message:  "Authentication required",
					Redirect: utils.EntryPath,
				})
				return
			}
			c.Redirect(http.StatusSeeOther, utils.EntryPath)
			c.Abort()
		}
	}
}

func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON) {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.HasPrefix(c.ContentType(), gin.MIMEJSON)
}

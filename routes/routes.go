package routes

import (
	"net/http"
	"strings"
	"time"

	"luxstay/config"
	"luxstay/handlers"
	"luxstay/middleware"
	"luxstay/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSessionRoutes registers sign-in, sign-out and the session state.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/login", hb.LoginHandler)
	r.POST("/logout", hb.LogoutHandler)
	r.GET("/session", hb.SessionHandler)
}

// RegisterGuestRoutes registers the views that require a signed-in guest.
func RegisterGuestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	guest := r.Group("")
	guest.Use(middleware.SessionGate(hb.Gate))
	{
		guest.GET("/main", hb.ListHotelsHandler)
		guest.GET("/hotel/:id", hb.GetHotelHandler)
		guest.PUT("/hotel/:id/stay", hb.EditStayHandler)
		guest.GET("/hotel/:id/rooms", hb.RoomsHandler)
		guest.POST("/hotel/:id/rooms/:roomId/pay", hb.InitiatePaymentHandler)
		guest.GET("/bookings", hb.ListBookingsHandler)
	}
}

// RegisterHealthRoute registers the liveness endpoint with the latest
// collaborator checks.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm LuxStay", "health": utils.GetHealthStatus()})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(utils.Metrics(), promhttp.HandlerOpts{})))
}

func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		// Wildcards are ignored.
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(corsConfig(config.AppConfig.CORSOrigins)))

	RegisterSessionRoutes(r, hb)
	RegisterGuestRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}

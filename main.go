package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luxstay/config"
	"luxstay/handlers"
	"luxstay/middleware"
	"luxstay/routes"
	"luxstay/services/api"
	"luxstay/services/auth"
	"luxstay/services/availability"
	"luxstay/services/booking"
	"luxstay/services/hotel"
	"luxstay/services/session"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := session.Open(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("main: failed to open session store", zap.String("backend", cfg.SessionBackend), zap.Error(err))
	}
	logger.Info("Session store ready", zap.String("backend", cfg.SessionBackend))

	reg := utils.Metrics()
	client := api.NewClient(cfg.APIBaseURL, store,
		api.WithTimeout(cfg.APITimeout),
		api.WithRateLimit(cfg.APIRatePerSec, cfg.APIRateBurst),
		api.WithLogger(logger.Named("api")),
		api.WithMetrics(api.NewMetrics(reg)),
	)

	// services.
	hotelService := hotel.NewHotelService(client)
	views := availability.NewRegistry(hotelService,
		availability.WithDebounce(cfg.AvailabilityDebounce),
		availability.WithLogger(logger.Named("availability")),
		availability.WithMetrics(availability.NewMetrics(reg)),
	)
	bookingService := booking.NewBookingService(client, logger.Named("booking"))
	authService := auth.NewAuthService(client, store, views, logger.Named("auth"))
	gate := auth.NewGate(store, logger.Named("gate"), 0)

	// handlers.
	authHandler := handlers.NewAuthHandler(authService, gate)
	hotelHandler := handlers.NewHotelHandler(hotelService, views)
	bookingHandler := handlers.NewBookingHandler(bookingService, views)

	handlerBundle := &handlers.HandlerBundle{
		Gate: gate,

		LoginHandler:   authHandler.LoginHandler,
		LogoutHandler:  authHandler.LogoutHandler,
		SessionHandler: authHandler.SessionHandler,

		ListHotelsHandler: hotelHandler.ListHotelsHandler,
		GetHotelHandler:   hotelHandler.GetHotelHandler,
		EditStayHandler:   hotelHandler.EditStayHandler,
		RoomsHandler:      hotelHandler.RoomsHandler,

		InitiatePaymentHandler: bookingHandler.InitiatePaymentHandler,
		ListBookingsHandler:    bookingHandler.ListBookingsHandler,
	}

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(reg))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(rootCtx, time.Minute, map[string]utils.HealthCheck{
		"session_store": func(ctx context.Context) error {
			_, err := store.Load(ctx)
			return err
		},
		"api": func(ctx context.Context) error {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, cfg.APIBaseURL+"/guest/hotels", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			if resp.StatusCode >= 500 {
				return errors.New(resp.Status)
			}
			return nil
		},
	})

	// Start the HTTP server.
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.AppHost, cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()
	views.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

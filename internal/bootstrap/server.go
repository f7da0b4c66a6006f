package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avolare/skybook/api"
	"github.com/avolare/skybook/config"
	"github.com/avolare/skybook/internal/auth"
	"github.com/avolare/skybook/internal/service/booking"
	"github.com/avolare/skybook/internal/service/flights"
	"github.com/avolare/skybook/internal/service/payments"
	"github.com/avolare/skybook/internal/service/reports"
	"github.com/avolare/skybook/internal/service/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Services struct {
	Auth     *auth.Manager
	Users    users.UserUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Payments payments.PaymentUseCase
	Reports  reports.ReportUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	authRequired := api.RequireAuth(svc.Auth, svc.Users)

	root := router.Group("/api")

	authHandler := api.NewAuthHandler(svc.Users)
	authPublic := root.Group("/auth")
	authPrivate := root.Group("/auth", authRequired)
	authHandler.Register(authPublic, authPrivate)

	flightHandler := api.NewFlightHandler(svc.Flights)
	flightsPublic := root.Group("/flights")
	flightsAdmin := root.Group("/admin/flights", authRequired, api.RequireAdmin())
	flightHandler.Register(flightsPublic, flightsAdmin)

	bookingHandler := api.NewBookingHandler(svc.Bookings)
	bookingHandler.Register(root.Group("/bookings", authRequired))

	paymentHandler := api.NewPaymentHandler(svc.Payments)
	paymentHandler.Register(root.Group("/payments", authRequired), root.Group("/webhook"))

	reportHandler := api.NewReportHandler(svc.Reports)
	reportHandler.Register(root.Group("/admin", authRequired, api.RequireAdmin()))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger-spec", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger-spec/openapi.json"),
		)))
	}

	return router
}

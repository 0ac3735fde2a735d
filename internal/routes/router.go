package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"logipro/internal/app"
	"logipro/internal/authz"
	"logipro/internal/config"
	"logipro/internal/delivery/http/handler"
	"logipro/internal/domain/fleet"
	"logipro/internal/logger"
	"logipro/internal/middleware"
)

// Dependencies are what the router mounts. Media may be nil when uploads
// are served by something else.
type Dependencies struct {
	Services *app.Services
	Drivers  fleet.DriverRepository
	Live     handler.LiveTracker
	Media    http.FileSystem
	Health   func(ctx context.Context) error
}

func SetupRoutes(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order: request ID, recovery, logging, security headers, CORS, size limit, rate limit
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware("/health"))
	router.Use(middleware.SecurityHeadersMiddleware(cfg.Server.Environment == "production", cfg.Storage.PublicURL))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.MaxBodySize, cfg.Storage.PODMaxBytes))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", healthHandler(deps.Health))

	if deps.Media != nil {
		router.StaticFS(cfg.Storage.PublicURL, deps.Media)
	}

	svc := deps.Services
	userHandler := handler.NewUserHandler(svc.Users)
	jobHandler := handler.NewJobHandler(svc.Jobs)
	shipmentHandler := handler.NewShipmentHandler(svc.Shipments)
	invoiceHandler := handler.NewInvoiceHandler(svc.Invoices)
	fleetHandler := handler.NewFleetHandler(svc.Fleet)
	addressHandler := handler.NewAddressHandler(svc.Addresses)
	publicHandler := handler.NewPublicHandler(svc.Quotes, svc.Tracking, deps.Live, cfg.JWT.Secret)

	assignedDriver := authz.Allow(authz.RoleDriver).WithOwner(svc.Shipments.IsAssignedDriver)
	staffOrAssignedDriver := authz.Allow(authz.RoleAdmin, authz.RoleManager, authz.RoleDriver).
		WithOwner(svc.Shipments.IsAssignedDriver, authz.Staff...)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1)
		publicHandler.RegisterRoutes(v1)
		shipmentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		{
			userHandler.RegisterProtectedRoutes(protected)
			jobHandler.RegisterRoutes(protected)
			shipmentHandler.RegisterUpdateRoutes(protected, middleware.Authorize(staffOrAssignedDriver, "id"))

			staff := protected.Group("")
			staff.Use(middleware.StaffOnly())
			{
				userHandler.RegisterStaffRoutes(staff)
				jobHandler.RegisterStaffRoutes(staff)
				shipmentHandler.RegisterStaffRoutes(staff)
				invoiceHandler.RegisterStaffRoutes(staff)
				fleetHandler.RegisterStaffRoutes(staff)
			}

			customer := protected.Group("")
			customer.Use(middleware.CustomerOnly())
			{
				jobHandler.RegisterCustomerRoutes(customer)
				addressHandler.RegisterCustomerRoutes(customer)
			}

			driver := protected.Group("")
			driver.Use(middleware.DriverOnly(), middleware.RequireDriverProfile(deps.Drivers))
			{
				shipmentHandler.RegisterAssignmentRoutes(driver)
				shipmentHandler.RegisterDriverRoutes(driver, middleware.Authorize(assignedDriver, "id"))
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if check != nil {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"message": "Database connection failed",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	}
}

package routes

import (
	"net/http"
	"time"

	"tajriba/handlers"
	"tajriba/middleware"
	"tajriba/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the HTTP surface onto the router.
func RegisterRoutes(router *gin.Engine, bundle *handlers.HandlerBundle) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", bundle.User.RegisterHandler)
		users.POST("/login", bundle.User.LoginHandler)

		authed := users.Group("")
		authed.Use(middleware.RequireAuth())
		{
			authed.POST("/logout", bundle.User.LogoutHandler)
			authed.GET("/me", bundle.User.MeHandler)
			authed.PUT("/me/fcm-token", bundle.User.UpdateFCMTokenHandler)
			authed.PUT("/me/gateway", bundle.User.UpdateGatewayHandler)
			authed.GET("/me/services",
				middleware.RequireRole(models.RoleHost, models.RoleAdmin),
				bundle.Service.ListMyServicesHandler)
		}
	}

	services := api.Group("/services")
	{
		services.GET("", bundle.Service.ListServicesHandler)
		services.GET("/:id", bundle.Service.GetServiceHandler)
		services.GET("/:id/availability", bundle.Booking.AvailabilityHandler)

		hosts := services.Group("")
		hosts.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleHost, models.RoleAdmin))
		{
			hosts.POST("", bundle.Service.CreateServiceHandler)
			hosts.PUT("/:id", bundle.Service.UpdateServiceHandler)
			hosts.DELETE("/:id", bundle.Service.DeactivateServiceHandler)
		}
	}

	bookings := api.Group("/bookings")
	bookings.Use(middleware.RequireAuth())
	{
		bookings.POST("", bundle.Booking.CreateBookingHandler)
		bookings.GET("", bundle.Booking.ListMyBookingsHandler)
		bookings.GET("/:id", bundle.Booking.GetBookingHandler)
		bookings.POST("/:id/confirm", bundle.Booking.ConfirmBookingHandler)
		bookings.POST("/:id/cancel", bundle.Booking.CancelBookingHandler)
		bookings.POST("/:id/complete", bundle.Booking.CompleteBookingHandler)

		admin := bookings.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/:id/dispute", bundle.Booking.DisputeBookingHandler)
			admin.POST("/:id/resolve", bundle.Booking.ResolveDisputeHandler)
		}
	}
}

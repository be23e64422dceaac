package routes

import (
	"net/http"
	"time"

	"karigar/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.CreateBookingRequest)
		api.GET("/:id", hb.GetBooking)
		api.POST("/:id/accept", hb.AcceptBooking)
		api.POST("/:id/reject", hb.RejectBooking)
		api.POST("/:id/schedule", hb.ScheduleBooking)
		api.POST("/:id/start", hb.StartBooking)
		api.POST("/:id/complete", hb.CompleteBooking)
		api.POST("/:id/cancel", hb.CancelBooking)
		api.POST("/:id/dispute", hb.RaiseDispute)
	}
}

// RegisterProviderRoutes sets up provider profile and availability endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", hb.CreateProvider)
		api.GET("/:id", hb.GetProvider)
		api.GET("/:id/slots", hb.GetSlots)
		api.PUT("/:id/availability", hb.SetWeeklySchedule)
		api.GET("/:id/availability", hb.GetWeeklySchedule)
		api.POST("/:id/time-off", hb.AddTimeOff)
		api.DELETE("/:id/time-off/:timeOffID", hb.DeleteTimeOff)
	}
}

// RegisterAIRoutes sets up the agent-backed pipeline endpoints.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai")
	{
		api.POST("/match", hb.MatchProviders)
		api.POST("/schedule/suggest", hb.SuggestSlots)
		api.POST("/pricing/recommend", hb.RecommendPrice)
		api.POST("/recommendations", hb.RecommendProviders)
	}
}

// RegisterReviewRoutes sets up the review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.POST("", hb.CreateReview)
		api.GET("/:id", hb.GetReview)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Karigar"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterAIRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
}

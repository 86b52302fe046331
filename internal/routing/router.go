// Package routing wires the middleware stack and the API routes onto the
// Gin engine.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"unistay-server/internal/handlers"
	"unistay-server/internal/managers"
	"unistay-server/internal/middleware"
	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, tokenMgr managers.TokenMgr, redisClient *redis.Client) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router)
	// Setup routes
	setupRoutes(router, databaseMgr, mailMgr, jwtMgr, tokenMgr, redisClient)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept, Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, tokenMgr managers.TokenMgr, redisClient *redis.Client) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "UniStay Server",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	// Set up API routes
	apiRouter := router.Group("/api")
	{
		mailLimiter := middleware.RateLimit(middleware.DefaultMailRateLimit(), redisClient)

		// Set up user routes
		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(&databaseMgr, &jwtMgr, &mailMgr, &tokenMgr)
		userRoutes(userRouter, userHdl, jwtMgr, mailLimiter)

		// Set up property routes
		propertyRouter := apiRouter.Group("/property")
		propertyHdl := handlers.NewPropertyHandler(&databaseMgr)
		propertyRoutes(propertyRouter, propertyHdl, jwtMgr)

		// Set up booking routes
		bookingRouter := apiRouter.Group("/booking")
		bookingRouter.Use(jwtMgr.JWTMiddleware())
		bookingHdl := handlers.NewBookingHandler(&databaseMgr, &mailMgr)
		bookingRoutes(bookingRouter, bookingHdl)
	}
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, jwtMgr managers.JWTMgr, mailLimiter gin.HandlerFunc) {
	userRouter.POST("", mailLimiter, middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	userRouter.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	userRouter.POST("/verify", middleware.ValidateAndSanitizeStruct(&schemas.VerifyCodeRequest{}), userHdl.VerifyUser)
	userRouter.POST("/verify-otp/:token", userHdl.VerifyUserByLink)
	userRouter.POST("/resend-verify-otp", mailLimiter, middleware.ValidateAndSanitizeStruct(&schemas.ResendCodeRequest{}), userHdl.ResendVerificationCode)
	userRouter.POST("/forgot-password", mailLimiter, middleware.ValidateAndSanitizeStruct(&schemas.ForgotPasswordRequest{}), userHdl.ForgotPassword)
	userRouter.POST("/resend-reset-otp", mailLimiter, middleware.ValidateAndSanitizeStruct(&schemas.ForgotPasswordRequest{}), userHdl.ForgotPassword)
	userRouter.POST("/reset-password", middleware.ValidateAndSanitizeStruct(&schemas.ResetPasswordRequest{}), userHdl.ResetPassword)
	// The following routes require the user to be authenticated
	userRouter.Use(jwtMgr.JWTMiddleware())
	userRouter.GET("", userHdl.ListUsers)
	userRouter.GET("/:userId", userHdl.GetUser)
	userRouter.PUT("/:userId", middleware.ValidateAndSanitizeStruct(&schemas.UpdateProfileRequest{}), userHdl.UpdateUser)
	userRouter.PATCH("/password", middleware.ValidateAndSanitizeStruct(&schemas.ChangePasswordRequest{}), userHdl.ChangePassword)
	userRouter.DELETE("/:userId", userHdl.DeleteUser)
}

func propertyRoutes(propertyRouter *gin.RouterGroup, propertyHdl handlers.PropertyHdl, jwtMgr managers.JWTMgr) {
	propertyRouter.GET("", propertyHdl.ListProperties)
	propertyRouter.GET("/:propertyId", propertyHdl.GetProperty)
	// The following routes require the user to be authenticated
	propertyRouter.Use(jwtMgr.JWTMiddleware())
	propertyRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreatePropertyRequest{}), propertyHdl.CreateProperty)
	propertyRouter.PUT("/:propertyId", middleware.ValidateAndSanitizeStruct(&schemas.UpdatePropertyRequest{}), propertyHdl.UpdateProperty)
	propertyRouter.DELETE("/:propertyId", propertyHdl.DeleteProperty)
}

func bookingRoutes(bookingRouter *gin.RouterGroup, bookingHdl handlers.BookingHdl) {
	bookingRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateBookingRequest{}), bookingHdl.CreateBooking)
	bookingRouter.GET("", bookingHdl.GetAllBookings)
	bookingRouter.GET("/:bookingId", bookingHdl.GetBooking)
	bookingRouter.GET("/agent/:agentId", bookingHdl.GetBookingsByAgent)
	bookingRouter.PATCH("/:bookingId", middleware.ValidateAndSanitizeStruct(&schemas.UpdateBookingStatusRequest{}), bookingHdl.UpdateBookingStatus)
	bookingRouter.DELETE("/:bookingId", bookingHdl.DeleteBooking)
}

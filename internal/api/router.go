package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/api/handlers"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/api/middleware"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/cache"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/captcha"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/payment"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/storage"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/tasks"
)

// SetupRouter wires services, middleware and handlers into the Gin engine.
// s3Store and taskClient may be nil when those subsystems are not configured.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, s3Store storage.IS3Storage, taskClient *tasks.Client) *gin.Engine {
	geoService := services.NewGeoService(db)
	userService := services.NewUserService(db, cfg)
	adService := services.NewAdService(db, geoService)
	intentService := services.NewPaymentIntentService(db)
	adLock := cache.NewAdLock(rdb, cfg.BookingLockTimeout)
	var notifier services.INotifier
	if taskClient != nil {
		notifier = taskClient
	}
	bookingService := services.NewBookingService(db, adService, userService, intentService, adLock, notifier)
	gateway := payment.NewGateway(cfg)
	captchaVerifier := captcha.NewTurnstileVerifier(cfg)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))
	r.Use(middleware.CaptchaMiddleware(captchaVerifier))
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(userService, cfg, taskClient)
	adHandler := handlers.NewAdHandler(adService, s3Store, taskClient)
	geoHandler := handlers.NewGeoHandler(geoService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(gateway, intentService, cfg)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Public: registration and login
	r.POST("/register", middleware.RequireCaptcha(captchaVerifier), authHandler.RegisterViewer)
	r.POST("/register/advertiser", middleware.RequireCaptcha(captchaVerifier), authHandler.RegisterAdvertiser)
	r.POST("/login", authHandler.LoginViewer)
	r.POST("/login/advertiser", authHandler.LoginAdvertiser)
	r.POST("/forgotpassword", authHandler.ForgotPassword)
	r.POST("/resetpassword/:token", authHandler.ResetPassword)

	// Public: browsing inventory and geography
	r.GET("/getallads", adHandler.GetAllAds)
	r.GET("/getad/:id", adHandler.GetAd)
	r.GET("/getadsbycity/:cityId", adHandler.GetAdsByCity)
	r.GET("/state/getstates", geoHandler.GetStates)
	r.GET("/city/getcities", geoHandler.GetCities)
	r.GET("/city/getcitybystate/:stateId", geoHandler.GetCitiesByState)
	r.GET("/area/getareas", geoHandler.GetAreas)
	r.GET("/area/getareabycity/:cityId", geoHandler.GetAreasByCity)

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(cfg.JwtSecret))
	{
		// Account management
		authed.GET("/user/:id", authHandler.GetUser)
		authed.PUT("/updateuserprofile/:id", authHandler.UpdateProfile)
		authed.PUT("/updateuserpassword/:id", authHandler.UpdatePassword)

		// Geography reference maintenance
		geo := authed.Group("/")
		geo.Use(middleware.RequireRole(models.RoleAdvertiser))
		{
			geo.POST("/state/addstate", geoHandler.AddState)
			geo.POST("/city/addcity", geoHandler.AddCity)
			geo.POST("/area/addarea", geoHandler.AddArea)
		}

		// Booking listings are shared between both roles
		authed.GET("/getbookings",
			middleware.RequireRole(models.RoleViewer, models.RoleAdvertiser),
			bookingHandler.GetBookings)

		viewer := authed.Group("/")
		viewer.Use(middleware.RequireRole(models.RoleViewer))
		{
			viewer.POST("/bookads/:adId", bookingHandler.BookAd)
			viewer.GET("/getbookingsbyuser", bookingHandler.GetBookingsByUser)
			viewer.POST("/createorder", paymentHandler.CreateOrder)
			viewer.POST("/verifyorder", paymentHandler.VerifyOrder)
		}

		advertiser := authed.Group("/advertiser")
		advertiser.Use(middleware.RequireRole(models.RoleAdvertiser))
		{
			advertiser.POST("/createads", adHandler.CreateAd)
			advertiser.PUT("/updateads/:id", adHandler.UpdateAd)
			advertiser.DELETE("/deleteads/:id", adHandler.DeleteAd)
			advertiser.POST("/uploadurl", adHandler.GetUploadURL)
		}

		authed.PUT("/updatebookingstatus/:id",
			middleware.RequireRole(models.RoleAdvertiser),
			bookingHandler.UpdateBookingStatus)

		authed.GET("/getadsbyadvertiser/:id", adHandler.GetAdsByAdvertiser)
	}

	return r
}

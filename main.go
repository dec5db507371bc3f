package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ChurchPortal/controllers"
	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/middlewares"
	"github.com/ChurchPortal/services"
)

func init() {
	initializers.LoadEnv()
	initializers.InitLogger()
}

func connectServices() {
	initializers.ConnectDB()

	app := initializers.InitFirebase()
	services.InitPushNotificationService(app)
	services.InitStorageService(app)
	services.InitEmailService()
	services.InitVideoService(os.Getenv("YOUTUBE_API_KEY"), os.Getenv("YOUTUBE_CHANNEL_HANDLE"))
}

func main() {
	defer zap.S().Sync()
	connectServices()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := services.NewSessionProvider(
		services.NewHostedAuthClient(os.Getenv("HOSTED_AUTH_URL"), os.Getenv("HOSTED_ANON_KEY")),
		services.ProviderConfig{
			JWTSecret:  os.Getenv("HOSTED_JWT_SECRET"),
			AdminEmail: os.Getenv("ADMIN_EMAIL"),
			SiteURL:    os.Getenv("SITE_URL"),
		},
		services.GetEmailService(),
		services.GetPushNotificationService(),
	)
	if err := provider.Init(ctx); err != nil {
		zap.S().Warnf("starting without a healthy hosted auth service: %v", err)
	}

	scheduler, err := services.StartScheduler(services.GetVideoService())
	if err != nil {
		zap.S().Fatalf("failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := newRouter(provider)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := newServer(port, router, provider)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("server failed: %v", err)
		}
	}()
	zap.S().Infof("listening on :%s", port)

	<-ctx.Done()
	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("graceful shutdown failed: %v", err)
	}
}

// newServer ties the provider's lifetime to the server's. Shutdown leaves
// in-flight requests running, so Close has to end the approval streams.
func newServer(port string, handler http.Handler, provider *services.SessionProvider) *http.Server {
	server := &http.Server{Addr: ":" + port, Handler: handler}
	server.RegisterOnShutdown(provider.Close)
	return server
}

func newRouter(provider *services.SessionProvider) *gin.Engine {
	router := gin.Default()
	authController := controllers.NewAuthController(provider)

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	// the single page app
	router.Static("/static", "./static")
	router.StaticFile("/", "./static/index.html")

	// auth routes
	router.POST("/auth/login/email", middlewares.RateLimitMiddleware(2, 2, getKey), authController.LoginWithEmail)
	router.POST("/auth/login/phone", middlewares.RateLimitMiddleware(2, 2, getKey), authController.LoginWithPhone)
	router.POST("/auth/signup/email", middlewares.RateLimitMiddleware(2, 2, getKey), authController.SignUpWithEmail)
	router.POST("/auth/signup/phone", middlewares.RateLimitMiddleware(2, 2, getKey), authController.SignUpWithPhone)
	router.GET("/auth/google", middlewares.RateLimitMiddleware(2, 2, getKey), authController.SignInWithGoogle)
	router.GET("/auth/callback", authController.OAuthCallback)

	// public routes
	public := router.Group("/")
	public.Use(middlewares.OptionalAuth(provider))
	{
		public.GET("/routes/resolve", controllers.ResolveRoute)
		public.GET("/events", controllers.GetPublicEvents)
		public.GET("/team/:slug", controllers.GetLeaderBio)
		public.GET("/videos", controllers.GetVideos)
		public.POST("/prayer-requests", middlewares.RateLimitMiddleware(1, 3, getKey), controllers.CreatePrayerRequest)
		public.POST("/contact", middlewares.RateLimitMiddleware(1, 3, getKey), controllers.SubmitContactForm)
	}

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth(provider))
	auth.Use(middlewares.RateLimitMiddleware(10, 10, middlewares.UserKey))
	{
		// available while pending approval
		auth.POST("/auth/logout", authController.Logout)
		auth.GET("/users/me", authController.GetCurrentUser)
		auth.POST("/users/me/refresh", authController.RefreshProfile)
		auth.GET("/users/me/approval", authController.WatchApproval)

		member := auth.Group("/")
		member.Use(middlewares.CheckMember)
		{
			member.PUT("/users/me/timezone", controllers.UpdateMyTimezone)

			member.GET("/prayer-wall", controllers.GetPrayerWall)
			member.GET("/prayer-requests/mine", controllers.GetMyPrayers)
			member.POST("/prayer-requests/:request_id/pray", controllers.TogglePrayer)

			member.GET("/calendar", controllers.GetMemberEvents)
			member.GET("/team", controllers.GetTeamMembers)
			member.GET("/newsletters", controllers.GetNewsletters)
			member.GET("/roster", controllers.GetRoster)
			member.GET("/photo-folders", controllers.GetPhotoFolders)
			member.GET("/photos", controllers.GetPhotos)
		}

		//admin only routes
		admin := auth.Group("/admin")
		admin.Use(middlewares.CheckAdmin)
		{
			admin.GET("/summary", controllers.GetAdminSummary)

			admin.GET("/users", controllers.GetUsers)
			admin.GET("/users/pending", controllers.GetPendingUsers)
			admin.POST("/users/:user_id/approve", controllers.ApproveUser)
			admin.DELETE("/users/:user_id", controllers.RejectUser)
			admin.PATCH("/users/:user_id/role", controllers.ChangeUserRole)
			admin.POST("/users/:user_id/revoke", controllers.RevokeUserAccess)

			admin.GET("/prayer-requests", controllers.GetAllPrayerRequests)
			admin.PATCH("/prayer-requests/:request_id", controllers.UpdatePrayerRequest)
			admin.DELETE("/prayer-requests/:request_id", controllers.DeletePrayerRequest)

			admin.POST("/events", controllers.CreateEvent)
			admin.PUT("/events/:event_id", controllers.UpdateEvent)
			admin.DELETE("/events/:event_id", controllers.DeleteEvent)

			admin.POST("/newsletters", controllers.CreateNewsletter)
			admin.PUT("/newsletters/:newsletter_id", controllers.UpdateNewsletter)
			admin.DELETE("/newsletters/:newsletter_id", controllers.DeleteNewsletter)

			admin.GET("/rosters", controllers.GetRosters)
			admin.POST("/rosters", controllers.CreateRoster)
			admin.PUT("/rosters/:roster_id", controllers.UpdateRoster)
			admin.DELETE("/rosters/:roster_id", controllers.DeleteRoster)

			admin.POST("/team", controllers.CreateTeamMember)
			admin.PUT("/team/:member_id", controllers.UpdateTeamMember)
			admin.DELETE("/team/:member_id", controllers.DeleteTeamMember)

			admin.POST("/photo-folders", controllers.CreatePhotoFolder)
			admin.DELETE("/photo-folders/:folder_id", controllers.DeletePhotoFolder)
			admin.POST("/photos", controllers.UploadPhoto)
			admin.DELETE("/photos/:photo_id", controllers.DeletePhoto)

			admin.POST("/push/subscribe", controllers.SubscribeAdminDevice)
			admin.POST("/push/unsubscribe", controllers.UnsubscribeAdminDevice)
			admin.POST("/test/email", controllers.SendTestEmail)
		}
	}

	return router
}

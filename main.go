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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/mehmetcc/videotube-auth-service/docs"
	"github.com/mehmetcc/videotube-auth-service/internal/authentication"
	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/tweet"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

// @title           VideoTube Account Service API
// @version         1.0
// @description     Accounts and sessions of the video platform.
//
// @host      localhost:8000
// @BasePath  /api/v1
func main() {
	// load config
	cfg, err := utils.LoadConfig(".env")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// init logger
	logger, err := utils.NewLogger(cfg.Server.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// init database
	db, err := utils.InitDatabase(&cfg.Database, cfg.Server.RequestTimeout)
	if err != nil {
		logger.Fatal("failed to connect to the database", zap.Error(err))
	}
	if err := db.AutoMigrate(&person.Person{}, &tweet.Tweet{}); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := person.RegisterValidators(); err != nil {
		logger.Fatal("failed to register validators", zap.Error(err))
	}

	if cfg.Server.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(
		utils.CORS(cfg.Server.CorsOrigin),
		utils.BodyLimit(cfg.Server.MaxBodyBytes),
		utils.Timeout(cfg.Server.RequestTimeout),
	)

	//
	// SWAGGER (protected by Basic Auth, not JWT)
	//
	if cfg.Admin.Password != "" {
		swaggerGroup := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.Admin.Username: cfg.Admin.Password,
		}))
		swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	//
	// WIRE UP SERVICES
	//
	personRepo := person.NewPersonRepository(db)
	hasher := person.NewBcryptHasher(bcrypt.DefaultCost)
	passwords := person.PasswordPolicy{Strict: cfg.Server.StrictPasswords}
	personService := person.NewPersonService(personRepo, hasher, passwords, logger)

	issuer := utils.NewTokenIssuer(
		cfg.Token.AccessTokenSecret,
		cfg.Token.AccessTokenExpiry,
		cfg.Token.RefreshTokenSecret,
		cfg.Token.RefreshTokenExpiry,
	)
	authService := authentication.NewAuthenticationService(
		personRepo,
		hasher,
		passwords,
		issuer,
		logger,
		cfg.Token.RevokeOnPasswordChange,
	)

	api := router.Group("/api/v1")
	api.GET("/healthcheck", func(c *gin.Context) {
		utils.Respond(c, http.StatusOK, gin.H{"status": "ok"}, "Service is running")
	})

	authMiddleware := authentication.AuthMiddleware(personService, issuer, logger)
	routes := utils.Routes{
		Public:  api.Group("", utils.RateLimit(utils.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.BehindProxy))),
		Secured: api.Group("", authMiddleware),
		Admin:   api.Group("", authMiddleware, authentication.RoleMiddleware(person.Admin, logger)),
	}
	person.NewPersonHandler(routes, personService, logger)
	authentication.NewAuthHandler(routes, authService, authentication.CookieOptions{
		Secure:     cfg.Server.CookieSecure,
		AccessTTL:  cfg.Token.AccessTokenExpiry,
		RefreshTTL: cfg.Token.RefreshTokenExpiry,
	}, logger)
	tweet.NewTweetHandler(routes, tweet.NewTweetService(tweet.NewTweetRepository(db), logger), logger)

	//
	// START SERVER
	//
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}
}

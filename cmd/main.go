package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Foodgram API
// @version 1.0
// @description Recipe sharing backend: recipes, ingredients, favorites, shopping cart and subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Token" or "Bearer" followed by a space and the access token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := setupDatabase(configuration)

	images, err := media.Open(ctx, configuration)
	checkPanicErr(err)

	router := setupRouter(configuration, db, images)

	if err := serve(ctx, configuration, router); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter. LOG_LEVEL wins
// over the environment default when it parses.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	switch conf.Environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if level, err := log.ParseLevel(conf.LogLevel); err == nil && os.Getenv("LOG_LEVEL") != "" {
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.FromAppConfig(conf))
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// setupRouter wires services and controllers into a gin engine
func setupRouter(conf *config.Config, db *gorm.DB, images media.Store) *gin.Engine {
	controllers.RegisterValidators()

	userService := services.NewUserService(db, images)
	ingredientService := services.NewIngredientService(db, conf.IngredientCacheSize, conf.IngredientCacheTTL)
	recipeService := services.NewRecipeService(db, images, conf)
	shoppingListService := services.NewShoppingListService(db)
	subscriptionService := services.NewSubscriptionService(db)
	oauthService := auth.NewOAuthService(db, conf, userService)

	paginator := controllers.NewPaginator(conf.PageSize, conf.MaxPageSize)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	controllers.Routes{
		Auth:          controllers.NewAuthController(oauthService),
		Users:         controllers.NewUserController(userService, subscriptionService, images, paginator),
		Ingredients:   controllers.NewIngredientController(ingredientService, conf.ImportMaxBytes),
		Recipes:       controllers.NewRecipeController(recipeService, shoppingListService, images, paginator, conf.LinkDomain),
		TokenEndpoint: oauthService.HandleToken,
		Tokens:        oauthService,
	}.Register(router)

	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if local, ok := images.(*media.LocalStore); ok {
		router.Static(conf.MediaURL, local.Root())
	}

	return router
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, conf *config.Config, router *gin.Engine) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", conf.Host, conf.Port),
		Handler:           middleware.Wrap(router, conf.CORSAllowedOrigins, conf.RateLimitPerMinute),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "foodgram-api",
	})
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/config"
	"github.com/sainivas456/TaskFlow-sub000/internal/database"
	"github.com/sainivas456/TaskFlow-sub000/internal/handlers"
	"github.com/sainivas456/TaskFlow-sub000/internal/middleware"
	"github.com/sainivas456/TaskFlow-sub000/internal/monitoring"
	"github.com/sainivas456/TaskFlow-sub000/internal/repositories"
	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Application holds all application dependencies and state.
type Application struct {
	Config *config.Config
	Pool   *database.Pool
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	TaskService      services.TaskService
	LabelService     services.LabelService
	TimeEntryService services.TimeEntryService
	AuthService      services.AuthService
	RegisterService  services.RegisterService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	log.Println("Initializing TaskFlow backend...")
	log.Printf("Environment: %s", cfg.Server.Environment)

	pool, err := database.NewPool(&database.PoolConfig{
		DSN:             cfg.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.Pool = pool
	log.Println("Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable: %v (falling back to in-process rate limiting)", err)
		} else {
			app.Redis = redisClient
			log.Println("Redis connected")
		}
	}

	app.LabelService = services.NewLabelService()
	app.TaskService = services.NewTaskService(app.LabelService)
	app.TimeEntryService = services.NewTimeEntryService()
	app.AuthService = services.NewAuthService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	app.RegisterService = services.NewRegisterService()
	log.Println("All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis, app.Config.RateLimit.RequestsPerMin, time.Minute)
		r.Use(limiter.Middleware())
	} else {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", app.healthHandler())
	r.GET("/ready", app.readinessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(app.Pool.DB, app.AuthService)
		registerHandler := handlers.NewRegisterHandler(app.Pool.DB, app.RegisterService)

		authRoutes.POST("/register", registerHandler.Registration)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(app.Config.JWT.Secret))
	{
		taskHandler := handlers.NewTaskHandler(app.Pool.DB, app.TaskService)
		entryHandler := handlers.NewTimeEntryHandler(app.Pool.DB, app.TimeEntryService)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("/:id", taskHandler.GetTaskByID)
			taskRoutes.PUT("/:id", taskHandler.UpdateTask)
			taskRoutes.PUT("/:id/complete", taskHandler.CompleteTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
			taskRoutes.PUT("/:id/subtasks/:subtask_id", taskHandler.UpdateSubtask)

			taskRoutes.GET("/:id/entries", entryHandler.GetEntries)
			taskRoutes.POST("/:id/entries", entryHandler.CreateEntry)
			taskRoutes.POST("/:id/entries/start", entryHandler.StartEntry)
		}

		labelHandler := handlers.NewLabelHandler(app.Pool.DB, app.LabelService)
		labelRoutes := protected.Group("/labels")
		{
			labelRoutes.GET("", labelHandler.GetLabels)
			labelRoutes.POST("", labelHandler.CreateLabel)
			labelRoutes.PUT("/:id", labelHandler.UpdateLabel)
			labelRoutes.DELETE("/:id", labelHandler.DeleteLabel)
		}

		entryRoutes := protected.Group("/entries")
		{
			entryRoutes.PUT("/:id", entryHandler.UpdateEntry)
			entryRoutes.PUT("/:id/stop", entryHandler.StopEntry)
			entryRoutes.DELETE("/:id", entryHandler.DeleteEntry)
		}
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("Server stopped gracefully")
	}()

	log.Printf("Server starting on %s", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "taskflow-backend",
		}

		if err := app.Pool.Health(); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"

		if app.Redis != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				health["redis"] = "down"
			} else {
				health["redis"] = "up"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func (app *Application) readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Pool.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"reason": "database not ready",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	}
}

package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"donelist/donelist/config"
	"donelist/donelist/database"
	"donelist/donelist/middleware"
	"donelist/donelist/routes"
	"donelist/donelist/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize authentication service
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	// Initialize user service with auth service dependency
	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Public routes: registration and login
	publicGroup := router.Group(cfg.APIPathPrefix)
	routes.RegisterAuthRoutes(publicGroup, db, authService, userService)

	// Authenticated routes
	apiGroup := router.Group(cfg.APIPathPrefix)
	apiGroup.Use(middleware.AuthMiddleware(authService))
	routes.RegisterTodoRoutes(apiGroup, db, services.TodoServiceInstance)
	routes.RegisterUserRoutes(apiGroup, db, userService)

	if cfg.AppEnv == "development" {
		routes.SetupDebugRoutes(router, db)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		db.Close()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

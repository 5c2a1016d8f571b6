package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/cors"

	"github.com/skhapre/dashboard-app/database"
	"github.com/skhapre/dashboard-app/handlers"
	"github.com/skhapre/dashboard-app/services"
)

func main() {
	// Load environment variables from .env file, if present
	if err := LoadEnv(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize database
	db, err := database.InitDB(Getenv("DB_PATH", "./dashboard.db"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	authService := services.NewAuthService(
		Getenv("JWT_SECRET", "your-default-secret-key-change-in-production"),
		Getenv("ACCESS_KEY", ""),
	)
	taskService := database.NewTaskService(db)
	todoService := database.NewTodoService(db)
	recordService := database.NewRecordService(db)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, hub)
	todoHandler := handlers.NewTodoHandler(todoService)
	spaceHandler := handlers.NewSpaceHandler(recordService)
	wsHandler := handlers.NewWSHandler(hub)
	authMiddleware := handlers.NewAuthMiddleware(authService)

	// Setup router
	r := mux.NewRouter()

	// Auth routes (public)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Everything else runs under a session
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authMiddleware.Auth)
	taskHandler.RegisterRoutes(protected)
	todoHandler.RegisterRoutes(protected)
	spaceHandler.RegisterRoutes(protected)
	protected.HandleFunc("/ws", wsHandler.HandleWebSocket)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(Getenv("ALLOWED_ORIGINS", "*"), ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	port := Getenv("PORT", "3001")

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(server.ListenAndServe())
}

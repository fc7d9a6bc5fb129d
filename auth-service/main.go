package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"taskboard/auth-service/handlers"
	"taskboard/auth-service/repositories"
	"taskboard/auth-service/services"
	"taskboard/logging"
)

func main() {
	logging.InitLogger("auth-service")
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Auth Service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	if os.Getenv("JWT_SECRET") == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}

	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "./auth.db"
	}
	db, err := repositories.InitDB(dbPath)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection failed: %v", err)
	}
	defer db.Close()
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Using sqlite database at %s", dbPath)

	authService := services.NewAuthService(repositories.NewUserRepo(db))
	authHandler := handlers.NewAuthHandler(authService)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", authHandler.Me).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	serverPort := os.Getenv("AUTH_SERVER_PORT")
	if serverPort == "" {
		serverPort = "4001"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)

	server := &http.Server{
		Addr:         serverAddress,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
	if err := server.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

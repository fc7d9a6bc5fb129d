package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sony/gobreaker"

	"taskboard/board-service/clients"
	"taskboard/board-service/handlers"
	"taskboard/board-service/middleware"
	"taskboard/board-service/repositories"
	"taskboard/board-service/services"
	"taskboard/httpclient"
	"taskboard/logging"
)

func main() {
	logging.InitLogger("board-service")
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Board Service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	dbPath := os.Getenv("BOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "./board.db"
	}
	db, err := repositories.InitDB(dbPath)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection failed: %v", err)
	}
	defer db.Close()
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Using sqlite database at %s", dbPath)

	authURL := os.Getenv("AUTH_SERVICE_URL")
	if authURL == "" {
		authURL = "http://localhost:4001"
	}

	authBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AuthServiceCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	authClient := clients.NewAuthClient(authURL, httpclient.NewHTTPClient(), authBreaker)

	hub := services.NewHub()
	go hub.Run()

	snapshots := repositories.NewSnapshotRepo(db)
	app, err := services.NewAppService(snapshots, authClient, hub, os.Getenv("BOARD_DELETE_POLICY"))
	if err != nil {
		logging.Logger.Fatalf("Event ID: STORE_INIT_FAILED, Description: Failed to initialize application state: %v", err)
	}

	sessionHandler := handlers.NewSessionHandler(app)
	boardHandler := handlers.NewBoardHandler(app)
	taskHandler := handlers.NewTaskHandler(app)
	userHandler := handlers.NewUserHandler(app)
	notificationHandler := handlers.NewNotificationHandler(app)
	stateHandler := handlers.NewStateHandler(app, hub)

	r := mux.NewRouter()

	// Session routes
	r.HandleFunc("/api/session/register", sessionHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/session/login", sessionHandler.Login).Methods(http.MethodPost)

	// Everything else requires a valid token
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/session/logout", sessionHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/state", stateHandler.GetState).Methods(http.MethodGet)
	protected.HandleFunc("/ws", stateHandler.HandleWebSocket)

	protected.HandleFunc("/boards", boardHandler.CreateBoard).Methods(http.MethodPost)
	protected.HandleFunc("/boards/{boardID}", boardHandler.UpdateBoard).Methods(http.MethodPut)
	protected.HandleFunc("/boards/{boardID}", boardHandler.DeleteBoard).Methods(http.MethodDelete)
	protected.HandleFunc("/boards/{boardID}/open", boardHandler.OpenBoard).Methods(http.MethodPost)
	protected.HandleFunc("/boards/{boardID}/members", boardHandler.InviteMembers).Methods(http.MethodPost)
	protected.HandleFunc("/boards/{boardID}/members/{userID}", boardHandler.RemoveMember).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{taskID}/move", taskHandler.MoveTask).Methods(http.MethodPost)

	protected.HandleFunc("/users", userHandler.GetUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users", userHandler.QuickAddUser).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userID}", userHandler.RemoveUser).Methods(http.MethodDelete)

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "4000"
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

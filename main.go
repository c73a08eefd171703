package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hms-backend/config"
	"hms-backend/controllers"
	"hms-backend/routes"
	"hms-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("ERROR: JWT_SECRET environment variable is not set.")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	logger.Info("database connection established, migrations applied")

	// Services
	guestService := services.NewGuestService(db)
	taxService := services.NewTaxService(db)
	roomService := services.NewRoomService(db)
	roomTypeService := services.NewRoomTypeService(db)
	branchService := services.NewBranchService(db)
	reservationService := services.NewReservationService(db, logger)

	// Side-effect dispatcher: default sinks only log; deployments swap
	// in the real websocket/push transports here.
	broadcast := &services.LogBroadcastSink{Logger: logger}
	notifier := &services.LogNotificationSink{Logger: logger}
	dispatcher := services.NewOutboxDispatcher(db, logger, broadcast, notifier)

	// Controllers
	authController := controllers.NewAuthController(db, jwtSecret)
	reservationController := controllers.NewReservationController(reservationService)
	roomController := controllers.NewRoomController(roomService)
	branchController := controllers.NewBranchController(branchService)
	roomTypeController := controllers.NewRoomTypeController(roomTypeService)
	guestController := controllers.NewGuestController(guestService)
	taxController := controllers.NewTaxController(taxService)

	router := routes.SetupRouter(
		logger,
		jwtSecret,
		authController,
		reservationController,
		roomController,
		branchController,
		roomTypeController,
		guestController,
		taxController,
	)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	go dispatcher.Run(dispatcherCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infof("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, shutting down server...")

	stopDispatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server stopped gracefully")
}

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

	"tastytreasures/db"
	"tastytreasures/events"
	"tastytreasures/ledger"
	"tastytreasures/middleware"
	"tastytreasures/rdx"
	"tastytreasures/recipes"
	"tastytreasures/routes"
	"tastytreasures/storage"
	"tastytreasures/users"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

func index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "API running")
}

func setupRouter(userHandler *users.Handler, recipeHandler *recipes.Handler, hub *events.Hub, uploadDir string) http.Handler {
	router := httprouter.New()
	router.GET("/", index)

	routes.AddUserRoutes(router, userHandler)
	routes.AddRecipeRoutes(router, recipeHandler)
	routes.AddActivityRoutes(router, hub)
	routes.AddStaticRoutes(router, uploadDir)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return middleware.Recover(middleware.Logging(middleware.SecurityHeaders(c.Handler(router))))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	var (
		userStore   storage.UserStore
		recipeStore storage.RecipeStore
	)
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.Connect(ctx, uri); err != nil {
			cancel()
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		cancel()
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				log.Printf("MongoDB disconnect failed: %v", err)
			}
		}()
		log.Println("Connected to MongoDB")
		userStore = db.NewMongoUserStore(db.UserCollection)
		recipeStore = db.NewMongoRecipeStore(db.RecipeCollection)
	} else {
		log.Println("MONGODB_URI not set, using in-memory storage")
		userStore = storage.NewMemoryUserStore()
		recipeStore = storage.NewMemoryRecipeStore()
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		if err := rdx.Init(addr); err != nil {
			log.Printf("Redis unavailable at %s, trending and pub/sub disabled: %v", addr, err)
		}
	}

	hub := events.NewHub()
	coinLedger := ledger.New(userStore, recipeStore, hub)
	userHandler := users.NewHandler(userStore)
	recipeHandler := recipes.NewHandler(recipeStore, userStore, coinLedger, hub, uploadDir)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           setupRouter(userHandler, recipeHandler, hub, uploadDir),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on port %s: %v", port, err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan

	log.Println("Shutdown signal received, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped cleanly")
}

package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"datachat-backend/internal/api"
	"datachat-backend/internal/llm"
	"datachat-backend/internal/service"
	"datachat-backend/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	state.State.SetLLMConfig(os.Getenv("OLLAMA_BASE_URL"), os.Getenv("OLLAMA_MODEL"))
	llmBaseURL, llmModel := state.State.LLMConfig()

	// Initialize Services
	llmService := llm.NewService(llmBaseURL, llmModel)
	dispatcher := service.NewDispatcher(llmService)

	// Initialize Handler
	handler := api.NewHandler(dispatcher, llmService)

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// CORS - Allow frontend
	origins := []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Register all API Routes
	handler.RegisterRoutes(r)

	// Get port from environment or default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("🚀 Starting DataChat backend on http://localhost:%s", port)
	log.Printf("🤖 LLM: %s (%s)", llmModel, llmBaseURL)
	log.Printf("📁 Upload directory: %s", api.UploadDir)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

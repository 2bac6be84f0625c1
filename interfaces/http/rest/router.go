package rest

import (
	"net/http"

	"lifepath-backend/interfaces/http/rest/handlers"
	"lifepath-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	graphHandler     *handlers.GraphHandler
	profileHandler   *handlers.ProfileHandler
	imageHandler     *handlers.ImageHandler
	interviewHandler *handlers.InterviewHandler
	enableCORS       bool
	logger           *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	graphHandler *handlers.GraphHandler,
	profileHandler *handlers.ProfileHandler,
	imageHandler *handlers.ImageHandler,
	interviewHandler *handlers.InterviewHandler,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		graphHandler:     graphHandler,
		profileHandler:   profileHandler,
		imageHandler:     imageHandler,
		interviewHandler: interviewHandler,
		enableCORS:       enableCORS,
		logger:           logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API routes
	router.Route("/api", func(r chi.Router) {
		// Graph endpoints
		r.Post("/add-node", rt.graphHandler.AddNode)
		r.Get("/get-graph/{userID}", rt.graphHandler.GetGraph)
		r.Post("/instantiate/{userID}", rt.graphHandler.Instantiate)
		r.Delete("/delete-node/{userID}/{nodeID}", rt.graphHandler.DeleteNode)

		// Personal info endpoints
		r.Post("/save-personal-info", rt.profileHandler.SaveProfile)
		r.Get("/personal-info/{userID}", rt.profileHandler.GetProfile)

		// Reference portrait endpoints
		r.Get("/user-image-exists/{userID}", rt.imageHandler.UserImageExists)
		r.Post("/upload-user-image/{userID}", rt.imageHandler.UploadUserImage)

		// Interview session endpoints
		r.Route("/interview", func(r chi.Router) {
			r.Get("/events/{userID}", rt.interviewHandler.Events)
			r.Post("/send/{userID}", rt.interviewHandler.Send)
			r.Delete("/session/{userID}", rt.interviewHandler.CloseSession)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

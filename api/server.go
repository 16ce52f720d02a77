package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pennywise/backend/feed"
	"pennywise/backend/handlers"
	"pennywise/backend/middleware"
	"pennywise/backend/services"
)

// Server wires the HTTP surface: routes, middleware and the static frontend.
type Server struct {
	router *mux.Router
	h      *handlers.Handler
}

func NewServer(store *services.Store, feeds *feed.Manager) *Server {
	s := &Server{
		router: mux.NewRouter(),
		h:      handlers.New(store, feeds),
	}

	s.router.Use(middleware.EnableCORS)

	// Register routes both bare and under /api so the frontend can use
	// either form.
	s.registerRoutes(s.router)
	s.registerRoutes(s.router.PathPrefix("/api").Subrouter())
	s.registerStatic()
	return s
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.h.HealthCheck).Methods("GET", "OPTIONS")

	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/expenses", s.h.GetExpenses).Methods("GET")
	protected.HandleFunc("/expenses", s.h.AddExpense).Methods("POST")
	protected.HandleFunc("/expenses/{id}", s.h.DeleteExpense).Methods("DELETE")
	protected.HandleFunc("/overview", s.h.GetOverview).Methods("GET")
	protected.HandleFunc("/session", s.h.SignOut).Methods("DELETE")
}

// registerStatic serves the prebuilt frontend from ./dist, falling back to
// index.html for client-side routes.
func (s *Server) registerStatic() {
	fs := http.FileServer(http.Dir("./dist"))
	s.router.PathPrefix("/assets/").Handler(fs)
	s.router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/assets/") {
			log.Printf("Serving index.html for path: %s", r.URL.Path)
		}
		http.ServeFile(w, r, "./dist/index.html")
	}).Methods("GET")
}

// Handler returns the HTTP handler for the API server.
func (s *Server) Handler() http.Handler {
	return s.router
}

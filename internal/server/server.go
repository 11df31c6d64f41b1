// Package server implements the HTTP boundary of the cardioscan backend:
// the analysis upload endpoint, data clearing, health checking, and static
// serving of the rendered slice images.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cardioscan/pkg/config"
	"cardioscan/pkg/imaging"
)

// Server wires configuration, logging and the imaging pipeline behind the
// HTTP routes.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *imaging.Pipeline
}

// New creates a server. The pipeline writes its slice images into the
// configured slices directory.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		pipeline: imaging.NewPipeline(cfg.Storage.SlicesDir, logger),
	}
}

// Router builds the route table and wraps it in the CORS middleware.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/analyze-heart", s.handleAnalyzeHeart).Methods("POST")
	r.HandleFunc("/api/clear-data", s.handleClearData).Methods("POST")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Rendered slice PNGs are served for inspection.
	r.PathPrefix("/slices/").Handler(http.StripPrefix("/slices/",
		http.FileServer(http.Dir(s.cfg.Storage.SlicesDir))))

	return allowAllCORS(r)
}

// Run starts the HTTP server and blocks until it fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	srv := &http.Server{
		Handler:      s.Router(),
		Addr:         addr,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// allowAllCORS accepts requests from any origin. The demonstration frontend
// is served separately and may live anywhere.
func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

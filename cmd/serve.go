package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/comparator"
	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/validator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Serves polygon validation, comparison and listing enrichment over HTTP for the marketplace backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		environment, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer environment.Close()

		if err := environment.migrate(ctx); err != nil {
			return err
		}

		router := chi.NewRouter()
		router.Use(middleware.RequestID)
		router.Use(middleware.Recoverer)
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		router.Post("/v1/polygons/validate", handleValidate)
		router.Post("/v1/polygons/compare", handleCompare)
		router.Post("/v1/listings/{id}/enrich", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			outcome, err := environment.pipeline.Enrich(r.Context(), id)
			if err != nil {
				zap.L().Error("enrich request failed",
					zap.String("listing_id", id),
					zap.Error(err),
				)
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, outcome)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, validator.Validate(req.Geometry))
}

func handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Geometry1 json.RawMessage `json:"geometry1"`
		Geometry2 json.RawMessage `json:"geometry2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p1, err := geometry.ParsePolygon(req.Geometry1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "geometry1 is not a valid polygon"})
		return
	}
	p2, err := geometry.ParsePolygon(req.Geometry2)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "geometry2 is not a valid polygon"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Overlap    comparator.Overlap `json:"overlap"`
		Similarity int                `json:"similarity"`
	}{
		Overlap:    comparator.ComputeOverlap(p1, p2),
		Similarity: comparator.Similarity(p1, p2),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

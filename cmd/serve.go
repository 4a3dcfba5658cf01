package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/buildlog"
	"github.com/life-td/targetdb-cli/internal/catalog"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built tables and build history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := buildlog.Open(filepath.Join(cfg.StagingDir, "buildlog.db"))
		if err != nil {
			return err
		}
		defer store.Close()

		return startServer(ctx, buildRouter(store, cfg.StagingDir), resolvePort(servePort, cfg.Server.Port))
	},
}

func resolvePort(flag, cfgPort int) int {
	if flag != 0 {
		return flag
	}
	return cfgPort
}

func buildRouter(store *buildlog.Store, stagingDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/builds", func(w http.ResponseWriter, req *http.Request) {
		builds, err := store.ListBuilds(req.Context(), 50)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, builds)
	})

	r.Get("/api/builds/{id}/counts", func(w http.ResponseWriter, req *http.Request) {
		counts, err := store.Counts(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	})

	r.Get("/api/tables/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if !validTable(name) {
			http.Error(w, `{"error":"unknown table"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/x-votable+xml")
		http.ServeFile(w, req, filepath.Join(stagingDir, name+".xml"))
	})

	return r
}

// startServer runs the HTTP server until ctx is cancelled, then drains
// in-flight requests on a fresh timeout context. The cancelled ctx would
// abort the shutdown immediately instead of letting requests finish.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func validTable(name string) bool {
	for _, t := range catalog.AllTables {
		if t == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

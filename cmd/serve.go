package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/artifact"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the refreshed artifacts and run history locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		mux.HandleFunc("GET /catalog", func(w http.ResponseWriter, r *http.Request) {
			serveArtifact(w, filepath.Join(cfg.Paths.DataDir, "catalog.json"))
		})

		mux.HandleFunc("GET /prices", func(w http.ResponseWriter, r *http.Request) {
			serveArtifact(w, filepath.Join(cfg.Paths.DataDir, "prices.json"))
		})

		mux.HandleFunc("GET /report", func(w http.ResponseWriter, r *http.Request) {
			report, err := e.Pipeline.BuildReport()
			if err != nil {
				http.Error(w, `{"error":"artifacts not built yet"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, report)
		})

		mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
			runs, err := e.Store.ListRuns(r.Context(), 50)
			if err != nil {
				http.Error(w, `{"error":"run history unavailable"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("serving artifacts", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// serveArtifact streams a JSON artifact file as-is.
func serveArtifact(w http.ResponseWriter, path string) {
	var raw json.RawMessage
	if err := artifact.ReadJSON(path, &raw); err != nil {
		http.Error(w, `{"error":"artifact not built yet"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (defaults to server.port)")
	rootCmd.AddCommand(serveCmd)
}

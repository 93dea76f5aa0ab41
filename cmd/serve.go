package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP question-answering API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Engine, env.StorePing),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// asker is the slice of the engine the HTTP layer needs.
type asker interface {
	Ask(ctx context.Context, sessionID, question string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

func newRouter(eng asker, ping func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]string{"status": "ok", "store": "ok"}
		status := http.StatusOK
		if ping != nil {
			if err := ping(req.Context()); err != nil {
				body["status"] = "degraded"
				body["store"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, status, body)
	})

	r.Post("/api/ask", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Question  string `json:"question"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Question == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
			return
		}
		if body.SessionID == "" {
			body.SessionID = uuid.NewString()
		}

		answer, err := eng.Ask(req.Context(), body.SessionID, body.Question)
		if err != nil {
			zap.L().Error("ask failed",
				zap.String("session", body.SessionID), zap.Error(err))
			status := http.StatusInternalServerError
			if model.IsBackendUnavailable(err) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]string{
				"error":      "could not answer the question",
				"session_id": body.SessionID,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"answer":     answer,
			"session_id": body.SessionID,
		})
	})

	r.Post("/api/reset", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
			return
		}
		if err := eng.Reset(req.Context(), body.SessionID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reset failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session_id": body.SessionID})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/geo"
	"github.com/helix-group/trials-cli/internal/match"
	"github.com/helix-group/trials-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for sponsor matching and hub lookups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		matcher, err := newMatcher()
		if err != nil {
			return err
		}
		hubs, err := geo.LoadHubs(cfg.Hubs.File)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(matcher, hubs, cfg.Hubs.ThresholdKm),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter mounts the matching and hub-lookup endpoints. The matcher and
// hub set are read-only, so handlers can share them without locking.
func buildRouter(matcher *match.Matcher, hubs []geo.Hub, thresholdKm float64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/match", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			LeadSponsor   string   `json:"lead_sponsor"`
			Collaborators []string `json:"collaborators"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if body.LeadSponsor == "" {
			http.Error(w, `{"error":"lead_sponsor is required"}`, http.StatusBadRequest)
			return
		}

		trial := model.Trial{
			LeadSponsor:   body.LeadSponsor,
			Collaborators: strings.Join(body.Collaborators, ", "),
		}
		m := matcher.MatchTrial(&trial)
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  string(m.Status),
			"company": m.Company,
			"via":     m.Via,
		})
	})

	r.Get("/hubs/closest", func(w http.ResponseWriter, req *http.Request) {
		lat, latErr := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			http.Error(w, `{"error":"lat and lon are required"}`, http.StatusBadRequest)
			return
		}

		name, dist, ok := geo.Closest(lat, lon, hubs, thresholdKm)
		writeJSON(w, http.StatusOK, map[string]any{
			"hub":         name,
			"distance_km": dist,
			"matched":     ok,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package http

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classbook/config"
	"classbook/internal/sweep"
	"classbook/transport/http/middleware"
	"classbook/transport/http/response"
	"classbook/transport/http/router"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type ServerState int

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

type HTTP struct {
	Config *config.Config
	Router router.Router
	State  ServerState

	appMiddleware middleware.AppMiddleware
	sweeper       *sweep.Runner
	mux           *chi.Mux
}

func New(cfg *config.Config, r router.Router, appMiddleware middleware.AppMiddleware, sweeper *sweep.Runner) *HTTP {
	return &HTTP{
		Config:        cfg,
		Router:        r,
		appMiddleware: appMiddleware,
		sweeper:       sweeper,
	}
}

func (h *HTTP) Serve() {
	h.setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.sweeper.Start(ctx)

	server := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go h.respondToSigterm(server, cancel)

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func (h *HTTP) setup() {
	h.mux = chi.NewRouter()

	h.mux.Use(chiMiddleware.RequestID)
	h.mux.Use(chiMiddleware.Recoverer)
	h.mux.Use(h.appMiddleware.Tracing)
	h.mux.Use(h.appMiddleware.RateLimit())
	h.mux.Use(h.rejectDuringShutdown)

	if h.Config.App.CORS.Enable {
		h.mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   h.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   h.Config.App.CORS.AllowedHeaders,
			AllowCredentials: h.Config.App.CORS.AllowCredentials,
			MaxAge:           h.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	h.Router.SetupRoutes(h.mux)
	h.State = ServerStateReady
}

// rejectDuringShutdown turns new requests away once the grace period starts,
// so load balancers drain the instance before the listener closes.
func (h *HTTP) rejectDuringShutdown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.State == ServerStateInGracePeriod || h.State == ServerStateInCleanupPeriod {
			response.WithPreparingShutdown(w)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HTTP) respondToSigterm(server *http.Server, cancel context.CancelFunc) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	<-done

	shutdownConfig := h.Config.Server.Shutdown

	if h.Config.Server.Env == "development" {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		cancel()
		_ = server.Close()

		return
	}

	log.Info().Msg("Received SIGTERM.")
	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

	h.State = ServerStateInGracePeriod

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.State = ServerStateInCleanupPeriod
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(shutdownConfig.CleanupPeriodSeconds)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown after cleanup period")
		_ = server.Close()
	}

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}

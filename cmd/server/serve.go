package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/samchencode/stroke-mgmt-sub000/content/application"
	"github.com/samchencode/stroke-mgmt-sub000/internal/middleware"
	"github.com/samchencode/stroke-mgmt-sub000/internal/rest"
	webhook "github.com/samchencode/stroke-mgmt-sub000/webhook/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the content API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Source.Validate(); err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to gracefully close application")
			}
		}()

		sub, err := a.bus.Subscribe("log", 0)
		if err != nil {
			return err
		}
		go application.LogRefreshes(sub, log.Logger)

		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(middleware.LoggingMiddleware())
		router.Use(gin.CustomRecovery(middleware.HandlePanics()))
		rest.NewApi(router, a.service)

		if cfg.Webhook.Secret != "" {
			h, err := webhook.NewWebhookHandler(cfg.Webhook.Secret, cfg.Source.FullName(), cfg.Source.Ref, a.service)
			if err != nil {
				return err
			}
			h.RegisterRoutes(router)
		} else {
			log.Warn().Msg("webhook.secret is not set, content webhook disabled")
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
		}

		serveErr := make(chan error, 1)
		go func() {
			log.Info().Int("port", cfg.Port).Str("source", cfg.Source.FullName()).Msg("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
		}

		log.Info().Msg("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		log.Info().Msg("Server stopped")
		return nil
	},
}

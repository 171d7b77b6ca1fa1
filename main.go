package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/klinova/klinova-api/pkg/api"
	"github.com/klinova/klinova-api/pkg/clients/cloudinary"
	"github.com/klinova/klinova-api/pkg/clients/resend"
	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/metrics"
	"github.com/klinova/klinova-api/pkg/services"
)

const (
	serviceName     = "klinova-api"
	upstreamTimeout = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	serve := serveCmd()
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Contact form and upload signing backend for the Klinova site",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal outside local development.
			_ = godotenv.Load()
		},
		RunE: serve.RunE,
	}
	root.AddCommand(serve, signUploadCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()

			log, err := logger.New(serviceName, cfg.Env)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.SafeSync()

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			reg := metrics.NewRegistry()
			m := metrics.New(reg)
			httpClient := &http.Client{Timeout: upstreamTimeout}

			mailClient := resend.NewClient(cfg.ResendAPIKey, cfg.ResendBaseURL, httpClient)
			uploadClient := cloudinary.NewClient(
				cfg.CloudinaryCloudName,
				cfg.CloudinaryAPIKey,
				cfg.CloudinaryAPISecret,
				cfg.CloudinaryBaseURL,
				httpClient,
			)

			mailer := services.NewMailer(mailClient, cfg.MailConfigured(), log, m)
			composer := services.NewComposer(cfg)
			handlers := api.NewHandlers(
				services.NewContactService(mailer, composer, cfg, log),
				services.NewUploadService(uploadClient, mailer, composer, cfg, log, m),
				cfg, m, log,
			)

			if !cfg.MailConfigured() {
				log.Warn("RESEND_API_KEY not set, emails will not be sent")
			}
			if !cfg.UploadConfigured() {
				log.Warn("Cloudinary credentials not set, upload signing disabled")
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           api.NewRouter(handlers, cfg, log, reg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Infow("server starting", "port", cfg.Port, "env", cfg.Env)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func signUploadCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "sign-upload",
		Short: "Print a signed direct-upload payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			log := logger.NewNop()

			client := cloudinary.NewClient(
				cfg.CloudinaryCloudName,
				cfg.CloudinaryAPIKey,
				cfg.CloudinaryAPISecret,
				cfg.CloudinaryBaseURL,
				nil,
			)
			svc := services.NewUploadService(client, nil, services.NewComposer(cfg), cfg, log, nil)

			sig, err := svc.Sign(folder)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sig)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "sub-folder under CLOUDINARY_FOLDER_ROOT")
	return cmd
}

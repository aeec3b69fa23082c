package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/kinder"
	"github.com/aretw0/kinder/internal/cli"
	"github.com/aretw0/kinder/internal/config"
	kinderhttp "github.com/aretw0/kinder/pkg/adapters/http"
	"github.com/aretw0/kinder/pkg/adapters/vk"
	"github.com/aretw0/kinder/pkg/observability"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/aretw0/kinder/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot against VK",
	Long: `Starts the bot. Messages arrive through the Bots Long Poll API or, with
vk.transport=callback, through the Callback API endpoint at POST /callback.
Health, metrics and session inspection are served on the same listener.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateVK(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		provision, _ := cmd.Flags().GetBool("provision")

		logger, logCloser, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		ctx := signals.Context()

		store, storeCloser, err := cli.OpenHistory(cfg.Storage)
		if err != nil {
			return err
		}
		defer storeCloser.Close()

		if err := cli.EnsureProvisioned(ctx, store, provision, logger); err != nil {
			return err
		}

		clientOpts := []vk.Option{vk.WithVersion(cfg.VK.APIVersion), vk.WithLogger(logger)}
		if cfg.VK.BaseURL != "" {
			clientOpts = append(clientOpts, vk.WithBaseURL(cfg.VK.BaseURL))
		}
		userClient := vk.NewClient(cfg.VK.UserToken, clientOpts...)
		groupClient := vk.NewClient(cfg.VK.GroupToken, clientOpts...)

		var agent *kinder.Agent
		metrics := observability.New(
			observability.WithLogger(logger),
			observability.WithSessionCount(func() int {
				if agent == nil {
					return 0
				}
				return agent.Sessions().Len()
			}),
		)

		agent, err = kinder.New(store, vk.NewDirectory(userClient), vk.NewSender(groupClient),
			kinder.WithLogger(logger),
			kinder.WithMessages(cfg.Messages),
			kinder.WithSearchConfig(cfg.Search.Pipeline()),
			kinder.WithMetrics(metrics),
			kinder.WithRunnerOptions(runner.WithQueueSize(cfg.Runner.QueueSize)),
		)
		if err != nil {
			return err
		}

		var (
			source   ports.EventSource
			callback http.Handler
		)
		switch cfg.VK.Transport {
		case config.TransportCallback:
			src := kinderhttp.NewCallbackSource(cfg.VK.Confirmation,
				kinderhttp.WithSecret(cfg.VK.Secret),
				kinderhttp.WithCallbackLogger(logger),
			)
			source, callback = src, src
		default:
			source = vk.NewLongPoll(groupClient, cfg.VK.GroupID)
		}

		srv := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: kinderhttp.NewHandler(kinderhttp.Config{
				Callback: callback,
				Metrics:  metrics.Handler(),
				Sessions: agent.Sessions(),
				Health: map[string]kinderhttp.HealthCheck{
					"history": func(ctx context.Context) error { return cli.Ping(ctx, store) },
				},
				Logger: logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("http listener started", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			if err := agent.Run(gctx, source); err != nil {
				return err
			}
			if gctx.Err() == nil {
				return errors.New("event source stopped")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		})

		logger.Info("kinder started", "transport", cfg.VK.Transport, "storage", cfg.Storage.Backend, "version", kinder.Version)
		err = g.Wait()
		logger.Info("kinder stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("provision", false, "Create the history storage if it does not exist")
}

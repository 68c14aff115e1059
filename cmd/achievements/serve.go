package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metalagman/achievements/internal/config"
	"github.com/metalagman/achievements/internal/telemetry"
	"github.com/metalagman/achievements/internal/tracker"
	"github.com/metalagman/achievements/internal/web"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string
	var input string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Track live telemetry and serve the achievement tree over HTTP",
		Long:  "Track live telemetry and serve the achievement tree over HTTP. Telemetry is posted as JSONL to /api/events, or streamed from --input (- for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			if addr == "" {
				addr = a.cfg.Web.Addr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sessionID := uuid.NewString()
			if err := a.store.StartSession(ctx, sessionID, "serve"); err != nil {
				return err
			}
			notifiers := tracker.Notifiers{
				&chatNotifier{w: cmd.OutOrStdout()},
				journalNotifier{store: a.store, sessionID: sessionID},
			}
			tr := tracker.New(telemetry.NewMirror(), a.store, notifiers, trackerOptions(a.cfg))
			stop := startTracker(ctx, tr)
			defer func() {
				if err := stop(); err != nil {
					log.Error().Err(err).Msg("stop tracker")
				}
			}()

			watchConfig(ctx, tr)

			server, err := web.NewServer(tr)
			if err != nil {
				return err
			}
			go server.Run(ctx)

			if input != "" {
				in, closeIn, err := openInput(cmd, input)
				if err != nil {
					return err
				}
				defer closeIn()
				go func() {
					n, err := feed(ctx, tr, in, 0)
					if err != nil && !errors.Is(err, context.Canceled) {
						log.Error().Err(err).Msg("telemetry input")
						return
					}
					log.Info().Int("events", n).Msg("telemetry input finished")
				}()
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("session", sessionID).Msg("serving achievements")
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config web.addr)")
	cmd.Flags().StringVar(&input, "input", "", "JSONL telemetry file to stream, - for stdin")
	return cmd
}

// watchConfig applies config file edits to the running tracker.
func watchConfig(ctx context.Context, tr *tracker.Tracker) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("reload config")
			return
		}
		if err := tr.Configure(ctx, trackerOptions(cfg)); err != nil {
			log.Error().Err(err).Msg("apply config")
			return
		}
		log.Info().Str("file", e.Name).Msg("config reloaded")
	})
	viper.WatchConfig()
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sdn-te/internal/api"
	"sdn-te/internal/engine"
	"sdn-te/internal/model"
	"sdn-te/internal/watch"
)

const shutdownTimeout = 5 * time.Second

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the management API and reconcile rules on topology changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	flags := cmd.Flags()
	addModeFlag(flags, "", "Objective mode to provision at startup (empty: none)")
	flags.String(cfgListen, ":8090", "Management API listen address")
	flags.Bool(cfgWatch, true, "Reconcile when the topology file changes")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	mode, err := model.ParseMode(c.config.GetString(cfgMode))
	if err != nil {
		return err
	}
	eng, err := c.newEngine(ctx)
	if err != nil {
		return err
	}
	if mode != model.ModeNone {
		report, err := eng.Provision(ctx, mode)
		if err != nil {
			c.logger.Error("Initial provisioning failed", "mode", mode, "error", err)
			return err
		}
		c.logger.Info("Initial provisioning done",
			"mode", report.Mode,
			"installed", report.Installed,
			"skipped", len(report.Skipped))
	}

	rec := engine.NewReconciler(eng, c.logger)
	rec.OnCycle = func(res engine.CycleResult) {
		if res.Report != nil {
			c.logger.Info("Reconciliation done",
				"mode", res.Report.Mode,
				"installed", res.Report.Installed,
				"withdrawn", res.Report.Withdrawn,
				"skipped", len(res.Report.Skipped),
				"duration", res.Duration)
		}
	}

	server := &http.Server{
		Addr:              c.config.GetString(cfgListen),
		Handler:           (&api.Server{Engine: eng, Reconciler: rec, Logger: c.logger}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rec.Run(errCtx)
	})
	g.Go(func() error {
		c.logger.Info("Management API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-errCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if c.config.GetBool(cfgWatch) {
		watcher := &watch.FileWatcher{
			Path:     c.config.GetString(cfgTopology),
			OnChange: func() { rec.Notify(model.ModeNone) },
			Logger:   c.logger,
		}
		g.Go(func() error {
			return watcher.Run(errCtx)
		})
	}

	err = g.Wait()
	c.logger.Info("Shut down", "error", err)
	return err
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/pkg/logging"
	"github.com/sakil470004/tea-with-me/services/storefront"
)

// serviceOptions writes the audit trail through logger, tagged
// component=audit.
func serviceOptions(logger *logging.Logger) extensions.ServiceOptions {
	auditLog := logger.With("component", "audit")
	return extensions.DefaultOptions().
		WithAudit(extensions.NewSlogAuditLogger(auditLog.Slog()))
}

func newServeCmd(st *cliState) *cobra.Command {
	var (
		port     int
		inMemory bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := st.config
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("in-memory") {
				cfg.InMemory = inMemory
			}

			st.logger.Info("Starting storefront",
				"version", version,
				"port", cfg.Port,
				"in_memory", cfg.InMemory,
				"admin_configured", cfg.BootstrapAdmin.Enabled())

			opts := serviceOptions(st.logger)
			svc, err := storefront.New(cfg, &opts)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					st.logger.Error("Shutdown error", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return svc.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep all data in memory")
	return cmd
}

// commandContext returns cmd's context, or Background when run outside
// Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

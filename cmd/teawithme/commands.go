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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakil470004/tea-with-me/pkg/logging"
	"github.com/sakil470004/tea-with-me/services/storefront"
)

// cliState is shared by all subcommands of one invocation.
type cliState struct {
	configPath string
	logJSON    bool

	config storefront.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:   "teawithme",
		Short: "Tea With Me storefront server and admin tools",
		Long: `teawithme serves the Tea With Me shop: the product catalog, carts,
checkout and the order dashboard API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.load(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if st.logger != nil {
				_ = st.logger.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", storefront.DefaultConfigPath,
		"path to the YAML config file")
	root.PersistentFlags().BoolVar(&st.logJSON, "log-json", false, "write console logs as JSON")

	root.AddCommand(
		newServeCmd(st),
		newSeedCmd(st),
		newAdminCmd(st),
		newVersionCmd(),
	)
	return root
}

// load reads the config and installs the default logger. A missing config
// file is only an error when --config was given explicitly.
func (st *cliState) load(cmd *cobra.Command) error {
	cfg, err := storefront.LoadConfig(st.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = storefront.LoadConfig("")
	}
	if err != nil {
		return err
	}
	cfg.Version = version
	cfg.Telemetry.ServiceVersion = version
	st.config = cfg

	st.logger = logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "teawithme",
		JSON:    st.logJSON,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(st.logger.Slog())
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "teawithme", version)
		},
	}
}

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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakil470004/tea-with-me/services/storefront"
	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/seed"
)

func newSeedCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample tea, coffee and snack products",
		Long: `seed adds the built-in sample catalog to the store. Existing products
are kept, so running it twice inserts the samples twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := storefront.OpenStore(st.config, st.logger.Slog())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := seed.Run(commandContext(cmd), catalog.NewStore(db))
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			st.logger.Info("Catalog seeded", "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d products)\n", seed.Message, n)
			return nil
		},
	}
}

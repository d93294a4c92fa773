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
	"os"

	"github.com/spf13/cobra"

	"github.com/sakil470004/tea-with-me/services/storefront"
	"github.com/sakil470004/tea-with-me/services/storefront/auth"
)

// passwordEnv supplies the password when --password is not given, keeping
// it out of shell history.
const passwordEnv = "TEAWITHME_ADMIN_PASSWORD"

var errPasswordRequired = errors.New("password required: use --password or " + passwordEnv)

func newAdminCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage dashboard accounts",
	}
	cmd.AddCommand(newAdminCreateCmd(st), newAdminSetPasswordCmd(st))
	return cmd
}

type accountFlags struct {
	name     string
	email    string
	password string
}

func (f *accountFlags) resolvePassword() (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	return "", errPasswordRequired
}

func newAdminCreateCmd(st *cliState) *cobra.Command {
	var (
		flags   accountFlags
		noAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := flags.resolvePassword()
			if err != nil {
				return err
			}
			users, closeDB, err := openUsers(st)
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := users.Create(commandContext(cmd), flags.name, flags.email, password, !noAdmin)
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			st.logger.Info("Account created", "user_id", u.ID, "is_admin", u.IsAdmin)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s <%s> (admin: %t)\n", u.Name, u.Email, u.IsAdmin)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&flags.email, "email", "", "login email")
	cmd.Flags().StringVar(&flags.password, "password", "", "password (default $"+passwordEnv+")")
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "create a non-admin account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAdminSetPasswordCmd(st *cliState) *cobra.Command {
	var flags accountFlags
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Reset the password of an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := flags.resolvePassword()
			if err != nil {
				return err
			}
			users, closeDB, err := openUsers(st)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := users.SetPassword(commandContext(cmd), flags.email, password); err != nil {
				return fmt.Errorf("set password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", auth.NormalizeEmail(flags.email))
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.email, "email", "", "login email")
	cmd.Flags().StringVar(&flags.password, "password", "", "new password (default $"+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// openUsers opens the store and returns its user accounts.
func openUsers(st *cliState) (*auth.UserStore, func(), error) {
	db, err := storefront.OpenStore(st.config, st.logger.Slog())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			st.logger.Warn("Failed to close store", "error", err)
		}
	}
	return auth.NewUserStore(db, st.config.BcryptCost), closeDB, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command teawithme runs and administers the Tea With Me storefront.
//
// # Commands
//
//	teawithme serve                      start the HTTP server
//	teawithme seed                       insert the sample catalog
//	teawithme admin create --email ...   create a dashboard account
//	teawithme admin set-password ...     reset an account's password
//	teawithme version                    print the build version
//
// Configuration is read from --config (default teawithme.yaml, skipped if
// absent) and overridden by TEAWITHME_* and OTEL_* environment variables.
//
// # Usage
//
//	go build -o teawithme ./cmd/teawithme
//	TEAWITHME_ADMIN_EMAIL=owner@example.com TEAWITHME_ADMIN_PASSWORD=... ./teawithme serve
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

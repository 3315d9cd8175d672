// bazi - terminal client for the bazi (八字) analysis service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/bazi-report-tui/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

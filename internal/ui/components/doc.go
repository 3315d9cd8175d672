// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the bazi report TUI.

Components are built on Bubble Tea and Lip Gloss and take a *styles.Theme for
consistent styling.

# Components

  - Header (header.go) - title bar with service and remote AI status
  - StatusBar (statusbar.go) - view state, mode, backend and key hints
  - LoadingIndicator (spinner.go) - spinner with the analysis step captions
  - RawView (codeblock.go) - the raw result payload as highlighted JSON
  - ToastManager (toast.go) - auto-dismissing notices

# Usage

	theme := styles.NewTheme("auto")
	loading := components.NewLoadingIndicator(theme)
	cmd := loading.Start()
	...
	view := loading.View()
*/
package components

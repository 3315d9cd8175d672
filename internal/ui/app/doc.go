// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea shell around the view controller.
//
// The controller owns every state decision. This package turns key presses
// into controller events, runs the network calls the controller asks for as
// tea.Cmds, and draws whatever state the controller is in:
//
//   - Input: the birth form with mode and backend toggles
//   - Loading: spinner with the analysis step captions
//   - Result: the glamour-rendered report in a scrollable viewport, or the
//     raw payload as highlighted JSON
//
// Errors never get their own screen. The controller passes through Error back
// to Input and the message shows as a toast.
package app

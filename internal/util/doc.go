// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the report, export and UI layers.
//
// # Display Width
//
// Report bodies mix CJK labels with ASCII digits and block characters, so every
// alignment decision goes through go-runewidth rather than len() or rune counts:
//   - StringWidth: terminal columns occupied by a string
//   - PadRight / PadLeft: pad to a column width
//   - TruncateWidth: cut to a column width with an ellipsis
//
// # Files
//
//   - AtomicWriteFile: crash-safe write (temp file, fsync, rename) used for
//     config saves and report exports
package util

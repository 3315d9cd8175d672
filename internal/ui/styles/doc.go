// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the bazi report TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light and
dark terminals. A Theme can also be pinned to one side from config.

# Color System (colors.go)

## Accent Colors

  - Cinnabar - Brand color, headings, focused form fields
  - Jade - Success, local backend indicator
  - Gold - Warnings, remote backend indicator
  - Indigo - Info notices, links
  - Rose - Errors

## Element Colors

The five elements have fixed colors so charts and badges read the same
everywhere:

	ElementColor("wood")  - green
	ElementColor("fire")  - red
	ElementColor("earth") - ochre
	ElementColor("metal") - silver
	ElementColor("water") - blue

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	if theme.IsDark {
		// Dark terminal detected
	}
	glamourStyle := theme.GlamourStyle("auto")

# Loading Steps (animations.go)

LoadingSteps are the captions shown while an analysis is in flight. StepAt
picks the caption for an elapsed duration.
*/
package styles

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the oracle TUI.

# Colors (colors.go)

All colors are Lip Gloss AdaptiveColor values so they follow the terminal's
light or dark background.

  - Purple - Accent for the widget border and the loading indicator
  - Cyan   - Prompt and title
  - Rose   - Error replies
  - Backdrop colors - Near, mid and far glyphs of the animated scene

# Theme (theme.go)

Theme bundles the Lip Gloss styles used by the widget and the backdrop. It
records the detected termenv color profile and the terminal size:

	theme := styles.NewTheme("dark")
	theme.SetSize(msg.Width, msg.Height)
	box := theme.Widget.Width(theme.WidgetWidth()).Render(body)
*/
package styles

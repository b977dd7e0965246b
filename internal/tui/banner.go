package tui

import "github.com/charmbracelet/lipgloss"

// bannerStyle uses the same adaptive color scheme as the other headings.
var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"}).
	Bold(true)

// Banner is shown when an interactive session starts.
const Banner = `              _       __
  __ ___  __| |___  / _|____ __
 / _/ _ \/ _' / -_)|  _(_-< '  \
 \__\___/\__,_\___||_| /__/_|_|_|`

// RenderBanner returns the styled banner followed by subtitle.
func RenderBanner(subtitle string) string {
	out := bannerStyle.Render(Banner)
	if subtitle != "" {
		out += "\n" + mutedStyle.Render(subtitle)
	}
	return out + "\n"
}

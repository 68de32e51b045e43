package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("#1e293b")
	ColorGray   = lipgloss.Color("8")
	ColorWhite  = lipgloss.Color("15")
	ColorBlue   = lipgloss.Color("#2563eb")
	ColorAmber  = lipgloss.Color("#f59e0b")
	ColorRed    = lipgloss.Color("#FF6666")
	ColorMuted  = lipgloss.Color("244")
	ColorAccent = lipgloss.Color("#10b981")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)

	badgeStyle = lipgloss.NewStyle().
			Background(ColorAmber).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	cardValueStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)

	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	statusStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
)

// swatch returns a style painting a solid block in color.
func swatch(color string) lipgloss.Style {
	c := lipgloss.Color(color)
	return lipgloss.NewStyle().Foreground(c).Background(c)
}

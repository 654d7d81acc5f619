package output

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF5F87")
	ColorWarning = lipgloss.Color("#FFB347")
	ColorMuted   = lipgloss.Color("#6C6C6C")
	ColorBorder  = lipgloss.Color("#3C3C3C")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(30)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	PositiveStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	NegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	NoteStyle     = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(2)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// AmountStyle picks the positive or negative style by sign.
func AmountStyle(isPositive bool) lipgloss.Style {
	if isPositive {
		return PositiveStyle
	}
	return NegativeStyle
}

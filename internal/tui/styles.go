package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor     = lipgloss.Color("#ff8c00")
	emberColor      = lipgloss.Color("#2b1400")
	softTextColor   = lipgloss.Color("#fff4d0")
	secondaryAccent = lipgloss.Color("#ffb347")

	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(secondaryAccent).Italic(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pageRuleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#56526e"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	composerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	selectionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))

	panelBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Foreground(softTextColor).Background(emberColor).Padding(0, 1)
	panelTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Background(emberColor)
	panelPreviewStyle = lipgloss.NewStyle().Italic(true).Foreground(secondaryAccent).Background(emberColor)
	panelBodyStyle    = lipgloss.NewStyle().Foreground(softTextColor).Background(emberColor)
	panelHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(emberColor)
	panelErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b")).Background(emberColor)
)

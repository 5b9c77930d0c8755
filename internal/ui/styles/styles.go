// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"} // categories, line numbers
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"} // hints, self links, footers

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	LinkColor      = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#89B4FA"}
	BadgeColor     = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#CBA6F7"}
	SelectionColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	SpinnerColor   = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFFFFF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#8C8C8C"}

	// Selection indicator for the ">" prefix in lists
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionColor)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	CategoryStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	// Attribute kind column
	KindStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Bold(true)

	LinkStyle = lipgloss.NewStyle().Foreground(LinkColor).Underline(true)

	// Links pointing at the object on screen
	SelfLinkStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	BadgeStyle = lipgloss.NewStyle().Foreground(BadgeColor)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	EmptyStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)

	ActionStyle = lipgloss.NewStyle().Foreground(LinkColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)

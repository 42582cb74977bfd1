package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle is used for secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TimerStyle frames the floating countdown widget.
var TimerStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// TimerDraggingStyle is TimerStyle while the widget is being dragged.
var TimerDraggingStyle = TimerStyle.
	BorderStyle(lipgloss.DoubleBorder()).
	BorderForeground(ColorMagenta)

// DialogStyle frames modal dialogs drawn over the current view.
var DialogStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.ThickBorder()).
	BorderForeground(ColorOrange)

// CountdownStyle colors the remaining time: red once the warning
// threshold is reached, yellow while paused.
func CountdownStyle(remaining, warnAt int, running bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case remaining <= warnAt:
		return base.Foreground(ColorRed)
	case !running:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGreen)
	}
}

// StatusStyle returns a color-coded style for the given status kind.
func StatusStyle(kind model.StatusKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch kind {
	case model.StatusTodo:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the backend's free-form
// priority labels.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case "Critique", "Urgente", "Critical":
		return base.Foreground(ColorRed)
	case "Haute", "High":
		return base.Foreground(ColorOrange)
	case "Moyenne", "Medium":
		return base.Foreground(ColorYellow)
	case "Basse", "Low":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// SeverityStyle returns the snackbar style for a notification severity.
func SeverityStyle(sev model.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF"))

	switch sev {
	case model.SeveritySuccess:
		return base.Background(lipgloss.Color("#2F855A"))
	case model.SeverityWarning:
		return base.Background(lipgloss.Color("#C05621"))
	case model.SeverityError:
		return base.Background(lipgloss.Color("#C53030"))
	default:
		return base.Background(lipgloss.Color("#2B6CB0"))
	}
}

package ui

import (
	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired with extended semantic colors
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Base colors
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	// Primary accent colors
	ColorPrimary   = lipgloss.Color("#BD93F9")
	ColorSecondary = lipgloss.Color("#6272A4")
	ColorInfo      = lipgloss.Color("#8BE9FD")
	ColorSuccess   = lipgloss.Color("#50FA7B")
	ColorWarning   = lipgloss.Color("#FFB86C")
	ColorDanger    = lipgloss.Color("#FF5555")

	// Status colors
	ColorStatusInProgress = lipgloss.Color("#8BE9FD")
	ColorStatusInReview   = lipgloss.Color("#F1FA8C")
	ColorStatusMerged     = lipgloss.Color("#50FA7B")
	ColorStatusClosed     = lipgloss.Color("#6272A4")
	ColorStatusBlocked    = lipgloss.Color("#FF5555")

	// Status background colors (for badges)
	ColorStatusPendingBg    = lipgloss.Color("#363949")
	ColorStatusInProgressBg = lipgloss.Color("#1A3344")
	ColorStatusInReviewBg   = lipgloss.Color("#3D3D1A")
	ColorStatusMergedBg     = lipgloss.Color("#1A3D2A")
	ColorStatusClosedBg     = lipgloss.Color("#2A2A3D")
	ColorStatusBlockedBg    = lipgloss.Color("#3D1A1A")
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING - Polished, consistent badge styles
// ══════════════════════════════════════════════════════════════════════════════

// RenderStatusBadge returns a styled status badge
func RenderStatusBadge(status model.Status) string {
	var fg, bg lipgloss.Color
	var label string

	switch status {
	case model.StatusPending:
		fg, bg, label = ColorText, ColorStatusPendingBg, "TODO"
	case model.StatusInProgress:
		fg, bg, label = ColorStatusInProgress, ColorStatusInProgressBg, "PROG"
	case model.StatusInReview:
		fg, bg, label = ColorStatusInReview, ColorStatusInReviewBg, "REVW"
	case model.StatusMerged:
		fg, bg, label = ColorStatusMerged, ColorStatusMergedBg, "MRGD"
	case model.StatusClosed:
		fg, bg, label = ColorStatusClosed, ColorStatusClosedBg, "CLSD"
	case model.StatusBlocked:
		fg, bg, label = ColorStatusBlocked, ColorStatusBlockedBg, "BLKD"
	default:
		fg, bg, label = ColorMuted, ColorBgSubtle, "????"
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Padding(0, 1).
		Render(label)
}

// ══════════════════════════════════════════════════════════════════════════════
// GRID STYLES - Maps canvas style classes to lipgloss
// ══════════════════════════════════════════════════════════════════════════════

// cellStyle returns the lipgloss style for a painted grid cell
func (t Theme) cellStyle(c canvas.Cell) lipgloss.Style {
	s := t.Renderer.NewStyle()
	switch c.Style {
	case canvas.StyleEdge:
		return s.Foreground(t.Secondary)
	case canvas.StyleArrow:
		return s.Foreground(t.Primary)
	case canvas.StyleBox:
		return s.Foreground(t.StatusColor(c.Status))
	case canvas.StyleBoxSelected:
		return s.Foreground(t.Primary).Bold(true)
	case canvas.StyleTitle:
		return s.Foreground(t.StatusColor(c.Status))
	case canvas.StyleTitleSelected:
		return s.Foreground(t.Primary).Bold(true)
	case canvas.StyleMeta:
		return s.Foreground(t.Subtext).Faint(true)
	case canvas.StyleHeader:
		return s.Foreground(t.Primary).Bold(true)
	case canvas.StyleHeaderRule:
		return s.Foreground(t.Border)
	case canvas.StyleMarker:
		return s.Foreground(t.Subtext).Italic(true)
	case canvas.StyleMarkerSelected:
		return s.Foreground(t.Primary).Bold(true).Italic(true)
	}
	return s
}

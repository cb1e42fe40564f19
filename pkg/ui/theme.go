package ui

import (
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the adaptive colors shared by every view
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Status colors
	Pending    lipgloss.AdaptiveColor
	InProgress lipgloss.AdaptiveColor
	InReview   lipgloss.AdaptiveColor
	Merged     lipgloss.AdaptiveColor
	Closed     lipgloss.AdaptiveColor
	Blocked    lipgloss.AdaptiveColor
}

// DefaultTheme builds the Dracula-flavoured theme for a renderer
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: string(ColorPrimary)},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: string(ColorSecondary)},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: string(ColorSubtext)},
		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: string(ColorBgHighlight)},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: string(ColorBgSubtle)},

		Pending:    lipgloss.AdaptiveColor{Light: "#444444", Dark: string(ColorText)},
		InProgress: lipgloss.AdaptiveColor{Light: "#0077AA", Dark: string(ColorStatusInProgress)},
		InReview:   lipgloss.AdaptiveColor{Light: "#B8860B", Dark: string(ColorStatusInReview)},
		Merged:     lipgloss.AdaptiveColor{Light: "#00A800", Dark: string(ColorStatusMerged)},
		Closed:     lipgloss.AdaptiveColor{Light: "#888888", Dark: string(ColorStatusClosed)},
		Blocked:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: string(ColorStatusBlocked)},
	}
}

// StatusColor returns the color for a PR status
func (t Theme) StatusColor(s model.Status) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusInProgress:
		return t.InProgress
	case model.StatusInReview:
		return t.InReview
	case model.StatusMerged:
		return t.Merged
	case model.StatusClosed:
		return t.Closed
	case model.StatusBlocked:
		return t.Blocked
	default:
		return t.Pending
	}
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/termfolio/internal/model"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	accent  lipgloss.Color
	success lipgloss.Color
	errorC  lipgloss.Color
	border  lipgloss.Color
}

var (
	darkPalette = palette{
		text:    lipgloss.Color("#F0F0F0"),
		muted:   lipgloss.Color("#8C8C8C"),
		accent:  lipgloss.Color("#C89A3A"),
		success: lipgloss.Color("#52C41A"),
		errorC:  lipgloss.Color("#FF4D4F"),
		border:  lipgloss.Color("#4A4A4A"),
	}
	lightPalette = palette{
		text:    lipgloss.Color("#1F1F1F"),
		muted:   lipgloss.Color("#6E6E6E"),
		accent:  lipgloss.Color("#9A6B00"),
		success: lipgloss.Color("#237804"),
		errorC:  lipgloss.Color("#CF1322"),
		border:  lipgloss.Color("#BFBFBF"),
	}
)

type styles struct {
	prompt      lipgloss.Style
	command     lipgloss.Style
	info        lipgloss.Style
	success     lipgloss.Style
	errorText   lipgloss.Style
	assistant   lipgloss.Style
	title       lipgloss.Style
	footer      lipgloss.Style
	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style
}

func newStyles(theme model.Theme) styles {
	p := darkPalette
	if theme == model.ThemeLight {
		p = lightPalette
	}
	return styles{
		prompt:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		command:   lipgloss.NewStyle().Foreground(p.text),
		info:      lipgloss.NewStyle().Foreground(p.text),
		success:   lipgloss.NewStyle().Foreground(p.success),
		errorText: lipgloss.NewStyle().Foreground(p.errorC),
		assistant: lipgloss.NewStyle().Foreground(p.accent),
		title:     lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		footer:    lipgloss.NewStyle().Foreground(p.muted),
		activeTab: lipgloss.NewStyle().
			Foreground(p.text).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.accent),
		inactiveTab: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.border),
	}
}

func (s styles) forKind(kind model.Kind) lipgloss.Style {
	switch kind {
	case model.KindSuccess:
		return s.success
	case model.KindError:
		return s.errorText
	case model.KindCommand:
		return s.command
	default:
		return s.info
	}
}

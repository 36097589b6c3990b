package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
)

// worldView is the tabbed Markdown viewer opened by explore.
type worldView struct {
	portfolio *content.Portfolio
	tabs      []string
	active    int
	visible   bool
	viewport  viewport.Model
	theme     model.Theme
	styles    styles
	width     int
	height    int
	errMsg    string
}

// closeWorldMsg returns control to the terminal.
type closeWorldMsg struct{}

func newWorldView(p *content.Portfolio, theme model.Theme) *worldView {
	return &worldView{
		portfolio: p,
		tabs:      append([]string(nil), content.Worlds...),
		viewport:  viewport.New(0, 0),
		theme:     theme,
		styles:    newStyles(theme),
	}
}

func (w *worldView) open(name string) {
	for i, tab := range w.tabs {
		if tab == name {
			w.active = i
		}
	}
	w.render()
}

func (w *worldView) setTheme(theme model.Theme) {
	w.theme = theme
	w.styles = newStyles(theme)
	w.render()
}

func (w *worldView) setSize(width, height int) {
	w.width = width
	w.height = height
	w.viewport.Width = width
	w.viewport.Height = maxInt(1, height-w.headerHeight()-1)
	w.render()
}

func (w *worldView) current() string {
	if len(w.tabs) == 0 {
		return ""
	}
	return w.tabs[w.active]
}

func (w *worldView) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		return func() tea.Msg { return closeWorldMsg{} }
	case "left", "h", "shift+tab":
		w.moveTab(-1)
		return nil
	case "right", "l", "tab":
		w.moveTab(1)
		return nil
	case "g", "home":
		w.viewport.GotoTop()
		return nil
	case "G", "end":
		w.viewport.GotoBottom()
		return nil
	}
	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)
	return cmd
}

func (w *worldView) moveTab(delta int) {
	count := len(w.tabs)
	if count == 0 {
		return
	}
	next := w.active + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	w.active = next
	w.render()
}

func (w *worldView) render() {
	w.errMsg = ""
	md, err := w.portfolio.WorldMarkdown(w.current())
	if err != nil {
		w.errMsg = err.Error()
		w.viewport.SetContent("")
		return
	}
	w.viewport.SetContent(renderMarkdown(md, w.theme, w.viewport.Width))
	w.viewport.GotoTop()
}

// renderMarkdown renders md with glamour, falling back to wrapped plain text.
func renderMarkdown(md string, theme model.Theme, width int) string {
	if width <= 0 {
		return md
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(theme)),
		glamour.WithWordWrap(maxInt(10, width-2)),
	)
	if err != nil {
		return wrapText(md, width)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return wrapText(md, width)
	}
	return strings.TrimRight(out, "\n")
}

func (w *worldView) headerHeight() int {
	h := lipgloss.Height(w.styles.activeTab.Render("X"))
	if h < 1 {
		h = 1
	}
	return h
}

func (w *worldView) renderTabs() string {
	parts := make([]string, 0, len(w.tabs))
	for i, tab := range w.tabs {
		if i == w.active {
			parts = append(parts, w.styles.activeTab.Render(tab))
		} else {
			parts = append(parts, w.styles.inactiveTab.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (w *worldView) view() string {
	header := fitLines(w.renderTabs(), w.width, w.headerHeight())
	bodyHeight := maxInt(1, w.height-w.headerHeight()-1)
	body := w.viewport.View()
	if w.errMsg != "" {
		body = w.styles.errorText.Render(w.errMsg)
	}
	body = fitLines(body, w.width, bodyHeight)
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Back: esc/q"
	footer := fitLines(w.styles.footer.Render(truncateLine(help, w.width)), w.width, 1)
	return strings.Join([]string{header, body, footer}, "\n")
}

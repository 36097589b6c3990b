package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/analytics"
	"github.com/verte-zerg/termfolio/internal/chat"
	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
	"github.com/verte-zerg/termfolio/internal/prefs"
	"github.com/verte-zerg/termfolio/internal/terminal"
)

// NavigateDelay is how long explore waits before opening a world.
const NavigateDelay = 1500 * time.Millisecond

const (
	terminalPrompt = "$ "
	chatPrompt     = "chat> "
	// assistantPrefix marks assistant replies in the output column.
	assistantPrefix = "assistant> "
	// contentRatio is the share of the window used by the output column at 100% zoom.
	contentRatio = 0.70
	minContent   = 20
)

// KV persists preferences and the recall list.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Options wires the model to its collaborators. KV, Chat and Logger are optional.
type Options struct {
	Portfolio *content.Portfolio
	Chat      *chat.Service
	Tracker   *analytics.Tracker
	KV        KV
	Prefs     model.Preferences
	Recall    *terminal.Recall
	Logger    *zap.Logger
	// Bell receives the terminal bell; defaults to stdout.
	Bell io.Writer
}

type navigateMsg struct {
	seq   int
	world string
}

type chatAnswerMsg struct {
	seq    int
	answer chat.Answer
	err    error
}

// Model implements the Bubble Tea portfolio terminal.
type Model struct {
	ctx       context.Context
	portfolio *content.Portfolio
	chat      *chat.Service
	tracker   *analytics.Tracker
	kv        KV
	logger    *zap.Logger
	bell      io.Writer

	session *terminal.Session
	prefs   model.Preferences
	styles  styles

	input    textinput.Model
	output   viewport.Model
	spinner  spinner.Model
	chatMode bool
	chatLog  []model.ChatMessage

	// navSeq identifies the most recent explore; older ticks are dropped.
	navSeq      int
	pendingNav  string
	askSeq      int
	cancelAsk   context.CancelFunc
	pendingChat bool

	world *worldView

	width  int
	height int
}

// NewModel constructs the terminal model.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bell := opts.Bell
	if bell == nil {
		bell = os.Stdout
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = analytics.NewTracker(ctx, nil, nil, logger)
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Defaults()
	}
	m := &Model{
		ctx:       ctx,
		portfolio: opts.Portfolio,
		chat:      opts.Chat,
		tracker:   tracker,
		kv:        opts.KV,
		logger:    logger,
		bell:      bell,
		prefs:     p,
		styles:    newStyles(p.Theme),
		output:    viewport.New(0, 0),
		world:     newWorldView(opts.Portfolio, p.Theme),
	}
	m.session = terminal.NewSession(opts.Portfolio, terminal.Env{
		Counters: tracker.Counters,
		Prefs:    func() model.Preferences { return m.prefs },
	}, opts.Recall)
	m.input = newPromptInput()
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.session.Output().Append("", m.welcome(), model.KindInfo)
	m.refreshOutput()
	return m
}

func newPromptInput() textinput.Model {
	input := textinput.New()
	input.Prompt = terminalPrompt
	input.CharLimit = 500
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	return input
}

func (m *Model) welcome() string {
	return fmt.Sprintf("Welcome to %s's portfolio terminal.\n%s\nType 'help' to see available commands.",
		m.portfolio.Name, m.portfolio.Title)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case navigateMsg:
		if msg.seq != m.navSeq || m.pendingNav == "" {
			return m, nil
		}
		m.pendingNav = ""
		m.showWorld(msg.world)
		return m, nil
	case closeWorldMsg:
		m.hideWorld()
		return m, nil
	case chatAnswerMsg:
		return m, m.handleAnswer(msg)
	case spinner.TickMsg:
		if !m.pendingChat {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		if m.worldOpen() {
			return m, m.world.update(msg)
		}
		return m, m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.submit()
	case "up":
		if cmd, ok := m.session.Recall().Prev(); ok {
			m.setInput(cmd)
		}
		return nil
	case "down":
		if cmd, ok := m.session.Recall().Next(); ok {
			m.setInput(cmd)
		}
		return nil
	case "ctrl+l":
		m.clearOutput()
		return nil
	case "alt+=", "alt++", "ctrl+=":
		m.setZoom(prefs.ZoomIn(m.prefs.Zoom))
		return nil
	case "alt+-", "ctrl+_", "ctrl+-":
		m.setZoom(prefs.ZoomOut(m.prefs.Zoom))
		return nil
	case "esc":
		if m.chatMode {
			m.leaveChat()
		}
		return nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.worldOpen() {
		return m.world.view()
	}
	width := m.contentWidth()
	title := m.styles.title.Render(truncateLine(m.portfolio.Name+" · "+m.portfolio.Title, width))
	block := strings.Join([]string{
		fitLines(title, width, 1),
		fitLines(m.output.View(), width, m.output.Height),
		fitLines(m.input.View(), width, 1),
		fitLines(m.renderFooter(), width, 1),
	}, "\n")
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, block)
}

// contentWidth scales the output column by the zoom level.
func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * contentRatio * float64(m.prefs.Zoom) / 100)
	w = maxInt(minContent, w)
	return minInt(m.width, w)
}

func (m *Model) updateLayout() {
	width := m.contentWidth()
	m.output.Width = width
	m.output.Height = maxInt(1, m.height-3)
	m.input.Width = maxInt(1, width-lipgloss.Width(m.input.Prompt)-1)
	m.world.setSize(m.width, m.height)
	m.refreshOutput()
}

func (m *Model) renderFooter() string {
	sound := "off"
	if m.prefs.Sound {
		sound = "on"
	}
	segments := []string{
		fmt.Sprintf("Theme %s", m.prefs.Theme),
		fmt.Sprintf("Zoom %d%%", m.prefs.Zoom),
		fmt.Sprintf("Sound %s", sound),
	}
	if m.chatMode {
		segments = append(segments, "Chat on (esc to leave)")
	}
	if m.pendingChat {
		segments = append(segments, m.spinner.View()+" thinking")
	}
	if m.pendingNav != "" {
		segments = append(segments, "Opening "+m.pendingNav)
	}
	return m.styles.footer.Render(strings.Join(segments, "  "))
}

func (m *Model) refreshOutput() {
	width := m.output.Width
	var b strings.Builder
	for i, entry := range m.session.Output().Entries() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(entry, width))
	}
	m.output.SetContent(b.String())
	m.output.GotoBottom()
}

func (m *Model) renderEntry(entry model.HistoryEntry, width int) string {
	var lines []string
	if entry.Command != "" {
		lines = append(lines, m.styles.prompt.Render(terminalPrompt)+m.styles.command.Render(wrapText(entry.Command, maxInt(1, width-2))))
	}
	if entry.Result != "" {
		lines = append(lines, m.entryStyle(entry).Render(wrapText(entry.Result, width)))
	}
	return strings.Join(lines, "\n")
}

// entryStyle picks the style for an entry's result. Successful assistant
// replies get their own color.
func (m *Model) entryStyle(entry model.HistoryEntry) lipgloss.Style {
	if entry.Command == "" && entry.Kind == model.KindSuccess && strings.HasPrefix(entry.Result, assistantPrefix) {
		return m.styles.assistant
	}
	return m.styles.forKind(entry.Kind)
}

func (m *Model) submit() tea.Cmd {
	raw := m.input.Value()
	m.input.Reset()
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}
	var cmds []tea.Cmd
	if m.prefs.Sound {
		cmds = append(cmds, m.ring())
	}
	if m.chatMode {
		cmds = append(cmds, m.submitChat(line))
		return tea.Batch(cmds...)
	}

	resp, _ := m.session.Submit(line)
	m.saveRecall()
	inv := terminal.Parse(line)
	if _, ok := m.session.Dispatcher().Lookup(inv.Name); ok {
		m.tracker.Command(m.ctx, inv.Name)
	}
	cmds = append(cmds, m.apply(resp.Action))
	m.refreshOutput()
	return tea.Batch(cmds...)
}

func (m *Model) apply(action terminal.Action) tea.Cmd {
	switch action.Type {
	case terminal.ActionClear:
		m.cancelNavigation()
	case terminal.ActionNavigate:
		return m.scheduleNavigation(action.Arg)
	case terminal.ActionAsk:
		return m.ask(action.Arg)
	case terminal.ActionChat:
		m.chatMode = true
		m.input.Prompt = chatPrompt
	case terminal.ActionTheme:
		if t, ok := prefs.ParseTheme(action.Arg); ok {
			m.setTheme(t)
		}
	case terminal.ActionZoom:
		if level, err := strconv.Atoi(action.Arg); err == nil {
			m.setZoom(level)
		}
	case terminal.ActionSound:
		m.prefs.Sound = action.Arg == "on"
		m.savePrefs()
	case terminal.ActionQuit:
		return m.quit()
	}
	return nil
}

func (m *Model) scheduleNavigation(world string) tea.Cmd {
	m.navSeq++
	seq := m.navSeq
	m.pendingNav = world
	return tea.Tick(NavigateDelay, func(time.Time) tea.Msg {
		return navigateMsg{seq: seq, world: world}
	})
}

func (m *Model) cancelNavigation() {
	m.navSeq++
	m.pendingNav = ""
}

func (m *Model) worldOpen() bool {
	return m.world.visible
}

func (m *Model) showWorld(name string) {
	m.world.visible = true
	m.world.setSize(m.width, m.height)
	m.world.open(name)
	m.logger.Debug("world opened", zap.String("world", name))
}

func (m *Model) hideWorld() {
	m.world.visible = false
	m.input.Focus()
}

func (m *Model) submitChat(line string) tea.Cmd {
	m.session.Recall().Push(line)
	m.saveRecall()
	switch strings.ToLower(line) {
	case "exit", "quit":
		m.session.Output().Append(line, "", model.KindCommand)
		m.leaveChat()
		m.refreshOutput()
		return nil
	}
	m.session.Output().Append(line, "", model.KindCommand)
	m.refreshOutput()
	return m.ask(line)
}

func (m *Model) leaveChat() {
	m.chatMode = false
	m.input.Prompt = terminalPrompt
	m.session.Output().Append("", "Left chat mode.", model.KindSuccess)
	m.refreshOutput()
}

// ask sends question to the assistant, canceling any question still in flight.
func (m *Model) ask(question string) tea.Cmd {
	if m.chat == nil {
		m.session.Output().Append("", "The assistant is not configured.", model.KindError)
		m.refreshOutput()
		return nil
	}
	if m.cancelAsk != nil {
		m.cancelAsk()
	}
	m.askSeq++
	seq := m.askSeq
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelAsk = cancel
	m.pendingChat = true

	history := append([]model.ChatMessage(nil), m.chatLog...)
	m.chatLog = append(m.chatLog, m.chat.NewUserMessage(question))
	m.tracker.Question(m.ctx)

	svc := m.chat
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ans, err := svc.Ask(ctx, question, history)
		return chatAnswerMsg{seq: seq, answer: ans, err: err}
	})
}

func (m *Model) handleAnswer(msg chatAnswerMsg) tea.Cmd {
	if msg.seq != m.askSeq {
		return nil
	}
	m.pendingChat = false
	if m.cancelAsk != nil {
		m.cancelAsk()
		m.cancelAsk = nil
	}
	if msg.err != nil {
		if !chat.IsCanceled(msg.err) {
			m.logger.Warn("chat request failed", zap.Error(msg.err))
			m.session.Output().Append("", "The assistant is unavailable right now.", model.KindError)
			m.refreshOutput()
		}
		return nil
	}
	reply := msg.answer.Message
	m.chatLog = append(m.chatLog, reply)
	kind := model.KindSuccess
	if msg.answer.Blocked {
		kind = model.KindError
	}
	text := assistantPrefix + reply.Text
	if reply.ResponseTime > 0 {
		text += fmt.Sprintf(" (%dms)", reply.ResponseTime.Milliseconds())
	}
	m.session.Output().Append("", text, kind)
	m.refreshOutput()
	return nil
}

func (m *Model) clearOutput() {
	m.session.Output().Clear()
	m.cancelNavigation()
	m.refreshOutput()
}

func (m *Model) setTheme(theme model.Theme) {
	m.prefs.Theme = theme
	m.styles = newStyles(theme)
	m.world.setTheme(theme)
	m.savePrefs()
	m.refreshOutput()
}

func (m *Model) setZoom(level int) {
	if !prefs.ValidZoom(level) || level == m.prefs.Zoom {
		return
	}
	m.prefs.Zoom = level
	m.savePrefs()
	m.updateLayout()
}

func (m *Model) ring() tea.Cmd {
	w := m.bell
	return func() tea.Msg {
		_, _ = io.WriteString(w, "\a")
		return nil
	}
}

func (m *Model) quit() tea.Cmd {
	if m.cancelAsk != nil {
		m.cancelAsk()
		m.cancelAsk = nil
	}
	m.cancelNavigation()
	m.savePrefs()
	m.saveRecall()
	return tea.Quit
}

func (m *Model) savePrefs() {
	if m.kv == nil {
		return
	}
	if err := prefs.Save(m.ctx, m.kv, m.prefs); err != nil {
		m.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

func (m *Model) saveRecall() {
	if m.kv == nil {
		return
	}
	if err := terminal.SaveRecall(m.ctx, m.kv, m.session.Recall()); err != nil {
		m.logger.Warn("failed to save command history", zap.Error(err))
	}
}

// Prefs returns the current preferences.
func (m *Model) Prefs() model.Preferences {
	return m.prefs
}

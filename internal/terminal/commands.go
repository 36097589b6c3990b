package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
	"github.com/verte-zerg/termfolio/internal/prefs"
)

// HelpTitle heads the help output.
const HelpTitle = "PORTFOLIO COMMANDS"

func builtinCommands() []Command {
	return []Command{
		{Name: "help", Summary: "Show this list", Run: runHelp},
		{Name: "about", Summary: "Who I am", Run: runAbout},
		{Name: "whoami", Summary: "Who you are", Run: runWhoami},
		{Name: "skills", Summary: "Languages, tools and platforms", Run: runSkills},
		{Name: "experience", Summary: "Career timeline", Run: runExperience},
		{Name: "projects", Summary: "Things I have built", Run: runProjects},
		{Name: "clients", Summary: "Who I have worked with", Run: runClients},
		{Name: "contact", Summary: "How to reach me", Run: runContact},
		{Name: "worlds", Summary: "List explorable worlds", Run: runWorlds},
		{Name: "explore", Usage: "explore <world>", Summary: "Open a world", Run: runExplore},
		{Name: "ask", Usage: "ask <question>", Summary: "Ask the AI assistant", Run: runAsk},
		{Name: "chat", Summary: "Talk to the AI assistant", Run: runChat},
		{Name: "history", Summary: "Previously entered commands", Run: runHistory},
		{Name: "stats", Summary: "Visit statistics", Run: runStats},
		{Name: "theme", Usage: "theme [dark|light|toggle]", Summary: "Switch color theme", Run: runTheme},
		{Name: "zoom", Usage: "zoom [in|out|reset|<level>]", Summary: "Change zoom level", Run: runZoom},
		{Name: "sound", Usage: "sound [on|off|toggle]", Summary: "Toggle key sounds", Run: runSound},
		{Name: "date", Summary: "Current date and time", Run: runDate},
		{Name: "echo", Usage: "echo <text>", Summary: "Print text", Run: runEcho},
		{Name: "clear", Summary: "Clear the screen", Run: runClear},
		{Name: "exit", Summary: "Leave the terminal", Run: runExit},
		{Name: "quit", Hidden: true, Run: runExit},
		{Name: "sudo", Hidden: true, Run: runSudo},
	}
}

func runHelp(d *Dispatcher, _ Invocation) Response {
	rows := make([][]string, 0, len(d.names))
	for _, name := range d.names {
		cmd := d.registry[name]
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		rows = append(rows, []string{usage, cmd.Summary})
	}
	lines := []string{
		heading(HelpTitle),
		indentLines(FormatTable(nil, rows, nil), "  "),
		"",
		"Use Up/Down to recall commands. Worlds: " + strings.Join(content.Worlds, ", "),
	}
	return info(strings.Join(lines, "\n"))
}

func runAbout(d *Dispatcher, _ Invocation) Response {
	p := d.portfolio
	lines := []string{
		heading(strings.ToUpper(p.Name)),
		fmt.Sprintf("%s · %s", p.Title, p.Location),
		"",
		p.Summary,
	}
	return info(strings.Join(lines, "\n"))
}

func runWhoami(d *Dispatcher, _ Invocation) Response {
	return info(fmt.Sprintf("guest@%s\nYou are browsing %s's portfolio. Type 'about' to meet the host.", slug(d.portfolio.Name), d.portfolio.Name))
}

func runSkills(d *Dispatcher, _ Invocation) Response {
	rows := make([][]string, 0, len(d.portfolio.Skills))
	for _, g := range d.portfolio.Skills {
		rows = append(rows, []string{g.Category, strings.Join(g.Items, ", ")})
	}
	lines := []string{heading("SKILLS"), strings.Join(FormatTable(nil, rows, nil), "\n")}
	return info(strings.Join(lines, "\n"))
}

func runExperience(d *Dispatcher, _ Invocation) Response {
	rows := make([][]string, 0, len(d.portfolio.Experience))
	for _, e := range d.portfolio.Experience {
		rows = append(rows, []string{e.Period, e.Role, e.Company})
	}
	lines := []string{
		heading("EXPERIENCE"),
		strings.Join(FormatTable(nil, rows, nil), "\n"),
		"",
		"Type 'explore experience' for the full timeline.",
	}
	return info(strings.Join(lines, "\n"))
}

func runProjects(d *Dispatcher, _ Invocation) Response {
	lines := []string{heading("PROJECTS")}
	for _, pr := range d.portfolio.Projects {
		lines = append(lines, fmt.Sprintf("%s: %s", pr.Name, pr.Description))
		if len(pr.Stack) > 0 {
			lines = append(lines, "  stack: "+strings.Join(pr.Stack, ", "))
		}
		if pr.URL != "" {
			lines = append(lines, "  "+pr.URL)
		}
	}
	return info(strings.Join(lines, "\n"))
}

func runClients(d *Dispatcher, _ Invocation) Response {
	rows := make([][]string, 0, len(d.portfolio.Clients))
	for _, c := range d.portfolio.Clients {
		rows = append(rows, []string{c.Name, c.Industry, c.Work})
	}
	lines := []string{heading("CLIENTS"), strings.Join(FormatTable(nil, rows, nil), "\n")}
	return info(strings.Join(lines, "\n"))
}

func runContact(d *Dispatcher, _ Invocation) Response {
	p := d.portfolio
	rows := [][]string{{"Email", p.Email}}
	if p.Website != "" {
		rows = append(rows, []string{"Web", p.Website})
	}
	for _, l := range p.Links {
		rows = append(rows, []string{l.Label, l.URL})
	}
	lines := []string{heading("CONTACT"), strings.Join(FormatTable(nil, rows, nil), "\n")}
	return info(strings.Join(lines, "\n"))
}

func runWorlds(_ *Dispatcher, _ Invocation) Response {
	lines := []string{heading("WORLDS")}
	for _, w := range content.Worlds {
		lines = append(lines, "  "+w)
	}
	lines = append(lines, "", "Type 'explore <world>' to enter one.")
	return info(strings.Join(lines, "\n"))
}

func runExplore(_ *Dispatcher, inv Invocation) Response {
	available := "Available worlds: " + strings.Join(content.Worlds, ", ")
	if len(inv.Args) == 0 {
		return failure("Usage: explore <world>\n" + available)
	}
	world := inv.Args[0]
	if !content.IsWorld(world) {
		return failure(fmt.Sprintf("Unknown world: %s\n%s", world, available))
	}
	resp := success(fmt.Sprintf("Launching %s world...", world))
	resp.Action = Action{Type: ActionNavigate, Arg: world}
	return resp
}

func runAsk(_ *Dispatcher, inv Invocation) Response {
	if inv.Raw == "" {
		return failure("Usage: ask <question>")
	}
	return Response{
		Output: "Asking the assistant...",
		Kind:   model.KindCommand,
		Action: Action{Type: ActionAsk, Arg: inv.Raw},
	}
}

func runChat(d *Dispatcher, _ Invocation) Response {
	resp := success(fmt.Sprintf("Chat mode. Ask anything about %s; type 'exit' to leave.", d.portfolio.Name))
	resp.Action = Action{Type: ActionChat}
	return resp
}

func runHistory(d *Dispatcher, _ Invocation) Response {
	items := d.history()
	if len(items) == 0 {
		return info("No commands in history yet.")
	}
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{strconv.Itoa(i + 1), item}
	}
	return info(strings.Join(FormatTable(nil, rows, map[int]bool{0: true}), "\n"))
}

func runStats(d *Dispatcher, _ Invocation) Response {
	c := d.counters()
	started := "-"
	if !c.SessionStart.IsZero() {
		started = c.SessionStart.Format("2006-01-02 15:04")
	}
	last := c.LastCommand
	if last == "" {
		last = "-"
	}
	rows := [][]string{
		{"Visits", strconv.Itoa(c.Visits)},
		{"Commands", strconv.Itoa(c.Commands)},
		{"Questions", strconv.Itoa(c.Questions)},
		{"Session start", started},
		{"Last command", last},
	}
	lines := []string{heading("STATS"), strings.Join(FormatTable(nil, rows, nil), "\n")}
	return info(strings.Join(lines, "\n"))
}

func runTheme(d *Dispatcher, inv Invocation) Response {
	arg := "toggle"
	if len(inv.Args) > 0 {
		arg = inv.Args[0]
	}
	var next model.Theme
	if arg == "toggle" {
		next = prefs.ToggleTheme(d.prefs().Theme)
	} else {
		t, ok := prefs.ParseTheme(arg)
		if !ok {
			return failure("Usage: theme [dark|light|toggle]")
		}
		next = t
	}
	resp := success(fmt.Sprintf("Theme set to %s.", next))
	resp.Action = Action{Type: ActionTheme, Arg: string(next)}
	return resp
}

func runZoom(d *Dispatcher, inv Invocation) Response {
	current := d.prefs().Zoom
	if len(inv.Args) == 0 {
		return info(fmt.Sprintf("Zoom is %d%%. Levels: %s", current, zoomLevels()))
	}
	var next int
	switch arg := strings.TrimSuffix(inv.Args[0], "%"); arg {
	case "in", "+":
		next = prefs.ZoomIn(current)
	case "out", "-":
		next = prefs.ZoomOut(current)
	case "reset":
		next = prefs.DefaultZoom
	default:
		level, err := strconv.Atoi(arg)
		if err != nil || !prefs.ValidZoom(level) {
			return failure(fmt.Sprintf("Invalid zoom level: %s\nLevels: %s", inv.Args[0], zoomLevels()))
		}
		next = level
	}
	resp := success(fmt.Sprintf("Zoom set to %d%%.", next))
	resp.Action = Action{Type: ActionZoom, Arg: strconv.Itoa(next)}
	return resp
}

func zoomLevels() string {
	parts := make([]string, len(prefs.Levels))
	for i, l := range prefs.Levels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ", ")
}

func runSound(d *Dispatcher, inv Invocation) Response {
	arg := "toggle"
	if len(inv.Args) > 0 {
		arg = inv.Args[0]
	}
	var on bool
	switch arg {
	case "on":
		on = true
	case "off":
		on = false
	case "toggle":
		on = !d.prefs().Sound
	default:
		return failure("Usage: sound [on|off|toggle]")
	}
	state := "off"
	if on {
		state = "on"
	}
	resp := success(fmt.Sprintf("Sound %s.", state))
	resp.Action = Action{Type: ActionSound, Arg: state}
	return resp
}

func runDate(d *Dispatcher, _ Invocation) Response {
	return info(d.env.Now().Format("Mon Jan 2 15:04:05 MST 2006"))
}

func runEcho(_ *Dispatcher, inv Invocation) Response {
	return info(inv.Raw)
}

func runClear(_ *Dispatcher, _ Invocation) Response {
	return Response{Action: Action{Type: ActionClear}}
}

func runExit(_ *Dispatcher, _ Invocation) Response {
	resp := success("Goodbye!")
	resp.Action = Action{Type: ActionQuit}
	return resp
}

func runSudo(_ *Dispatcher, _ Invocation) Response {
	return failure("Permission denied: this incident will be reported.")
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

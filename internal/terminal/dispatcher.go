package terminal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
)

const maxSuggestions = 3

// ActionType is a side effect the host applies after a command.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClear
	ActionNavigate
	ActionAsk
	ActionChat
	ActionTheme
	ActionZoom
	ActionSound
	ActionQuit
)

// Action carries a side effect request and its argument.
type Action struct {
	Type ActionType
	Arg  string
}

// Response is the result of executing one command line.
type Response struct {
	Command string
	Output  string
	Kind    model.Kind
	Action  Action
}

// Invocation is a parsed command line.
type Invocation struct {
	Name string
	// Args are lower-cased positional arguments.
	Args []string
	// Raw is the argument text with its original case and spacing.
	Raw string
}

// Handler executes a command.
type Handler func(d *Dispatcher, inv Invocation) Response

// Command is a registry entry.
type Command struct {
	Name    string
	Usage   string
	Summary string
	Hidden  bool
	Run     Handler
}

// Env exposes session state to handlers. Nil funcs are treated as empty.
type Env struct {
	Now      func() time.Time
	History  func() []string
	Counters func() model.Counters
	Prefs    func() model.Preferences
}

// Dispatcher resolves command lines against a fixed registry.
type Dispatcher struct {
	portfolio *content.Portfolio
	env       Env
	registry  map[string]Command
	names     []string
}

// NewDispatcher builds a dispatcher with the built-in command set.
func NewDispatcher(p *content.Portfolio, env Env) *Dispatcher {
	if env.Now == nil {
		env.Now = time.Now
	}
	d := &Dispatcher{
		portfolio: p,
		env:       env,
		registry:  map[string]Command{},
	}
	for _, cmd := range builtinCommands() {
		d.register(cmd)
	}
	return d
}

func (d *Dispatcher) register(cmd Command) {
	if _, exists := d.registry[cmd.Name]; !exists {
		d.names = append(d.names, cmd.Name)
		sort.Strings(d.names)
	}
	d.registry[cmd.Name] = cmd
}

// Lookup returns the registry entry for name.
func (d *Dispatcher) Lookup(name string) (Command, bool) {
	cmd, ok := d.registry[name]
	return cmd, ok
}

// Parse splits a command line into its name and arguments.
func Parse(input string) Invocation {
	trimmed := strings.TrimSpace(input)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return Invocation{}
	}
	inv := Invocation{Name: strings.ToLower(fields[0])}
	for _, f := range fields[1:] {
		inv.Args = append(inv.Args, strings.ToLower(f))
	}
	inv.Raw = strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))
	return inv
}

// Execute runs one command line. Unknown commands produce an error response;
// execution never fails.
func (d *Dispatcher) Execute(input string) Response {
	inv := Parse(input)
	command := strings.TrimSpace(input)
	if inv.Name == "" {
		return Response{Command: command}
	}
	cmd, ok := d.registry[inv.Name]
	if !ok {
		resp := d.unknown(input, inv.Name)
		resp.Command = command
		return resp
	}
	resp := cmd.Run(d, inv)
	resp.Command = command
	return resp
}

// Suggest lists up to three registry commands resembling input.
func (d *Dispatcher) Suggest(input string) []string {
	needle := strings.Join(strings.Fields(strings.ToLower(input)), " ")
	if needle == "" {
		return nil
	}
	var out []string
	for _, name := range d.names {
		prefix := name
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		if strings.Contains(name, needle) || strings.Contains(needle, prefix) {
			out = append(out, name)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

func (d *Dispatcher) unknown(input, name string) Response {
	lines := []string{fmt.Sprintf("Command not found: %s", name)}
	if suggestions := d.Suggest(input); len(suggestions) > 0 {
		lines = append(lines, fmt.Sprintf("Did you mean: %s?", strings.Join(suggestions, ", ")))
	}
	lines = append(lines, "Type 'help' to see available commands.")
	return Response{Output: strings.Join(lines, "\n"), Kind: model.KindError}
}

func (d *Dispatcher) history() []string {
	if d.env.History == nil {
		return nil
	}
	return d.env.History()
}

func (d *Dispatcher) counters() model.Counters {
	if d.env.Counters == nil {
		return model.Counters{}
	}
	return d.env.Counters()
}

func (d *Dispatcher) prefs() model.Preferences {
	if d.env.Prefs == nil {
		return model.Preferences{Theme: model.ThemeDark, Zoom: 100}
	}
	return d.env.Prefs()
}

func info(text string) Response {
	return Response{Output: text, Kind: model.KindInfo}
}

func success(text string) Response {
	return Response{Output: text, Kind: model.KindSuccess}
}

func failure(text string) Response {
	return Response{Output: text, Kind: model.KindError}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/model"
	"github.com/verte-zerg/termfolio/internal/prefs"
	"github.com/verte-zerg/termfolio/internal/terminal"
)

// scriptRunner executes terminal commands without the TUI, one line at a time.
type scriptRunner struct {
	app      *app
	session  *terminal.Session
	out      io.Writer
	chatMode bool
	chatLog  []model.ChatMessage
	done     bool
}

func newScriptRunner(a *app, out io.Writer) *scriptRunner {
	r := &scriptRunner{app: a, out: out}
	r.session = terminal.NewSession(a.portfolio, terminal.Env{
		Counters: a.tracker.Counters,
		Prefs:    func() model.Preferences { return a.prefs },
	}, a.recall)
	return r
}

func runScript(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	r := newScriptRunner(a, out)
	defer r.saveRecall(ctx)
	scanner := bufio.NewScanner(in)
	for !r.done && scanner.Scan() {
		if err := r.exec(ctx, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (r *scriptRunner) exec(ctx context.Context, raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}
	if r.chatMode {
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			r.chatMode = false
			return r.print("Left chat mode.")
		}
		return r.ask(ctx, line)
	}

	resp, appended := r.session.Submit(line)
	inv := terminal.Parse(line)
	if _, ok := r.session.Dispatcher().Lookup(inv.Name); ok {
		r.app.tracker.Command(ctx, inv.Name)
	}
	if appended {
		if err := r.print(resp.Output); err != nil {
			return err
		}
	}

	switch resp.Action.Type {
	case terminal.ActionAsk:
		return r.ask(ctx, resp.Action.Arg)
	case terminal.ActionChat:
		r.chatMode = true
	case terminal.ActionNavigate:
		md, err := r.app.portfolio.WorldMarkdown(resp.Action.Arg)
		if err != nil {
			return r.print(err.Error())
		}
		return r.print(md)
	case terminal.ActionTheme:
		if t, ok := prefs.ParseTheme(resp.Action.Arg); ok {
			r.app.prefs.Theme = t
			r.savePrefs(ctx)
		}
	case terminal.ActionZoom:
		if level, err := strconv.Atoi(resp.Action.Arg); err == nil {
			r.app.prefs.Zoom = level
			r.savePrefs(ctx)
		}
	case terminal.ActionSound:
		r.app.prefs.Sound = resp.Action.Arg == "on"
		r.savePrefs(ctx)
	case terminal.ActionQuit:
		r.done = true
	}
	return nil
}

func (r *scriptRunner) ask(ctx context.Context, question string) error {
	r.app.tracker.Question(ctx)
	ans, err := r.app.chat.Ask(ctx, question, r.chatLog)
	if err != nil {
		return fmt.Errorf("chat canceled: %w", err)
	}
	r.chatLog = append(r.chatLog, r.app.chat.NewUserMessage(question), ans.Message)
	return r.print("assistant> " + ans.Message.Text)
}

func (r *scriptRunner) print(text string) error {
	if _, err := fmt.Fprintln(r.out, text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *scriptRunner) savePrefs(ctx context.Context) {
	if err := prefs.Save(ctx, r.app.store, r.app.prefs); err != nil {
		r.app.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

func (r *scriptRunner) saveRecall(ctx context.Context) {
	if err := terminal.SaveRecall(ctx, r.app.store, r.session.Recall()); err != nil {
		r.app.logger.Warn("failed to save command history", zap.Error(err))
	}
}

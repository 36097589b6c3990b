package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
)

func testPortfolio(t *testing.T) *content.Portfolio {
	t.Helper()
	p, err := content.Default()
	if err != nil {
		t.Fatalf("default content: %v", err)
	}
	return p
}

func TestParseLowercasesAndKeepsRaw(t *testing.T) {
	inv := Parse("  ASK   Are you   Available?  ")
	if inv.Name != "ask" {
		t.Fatalf("expected name ask, got %q", inv.Name)
	}
	if diff := cmp.Diff([]string{"are", "you", "available?"}, inv.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if inv.Raw != "Are you   Available?" {
		t.Fatalf("unexpected raw %q", inv.Raw)
	}
}

func TestExecuteIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	resp := d.Execute("HELP")
	if resp.Kind != model.KindInfo || !strings.Contains(resp.Output, HelpTitle) {
		t.Fatalf("expected help output, got %+v", resp)
	}
}

func TestHelpHidesEasterEggs(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	out := d.Execute("help").Output
	if strings.Contains(out, "sudo") {
		t.Fatalf("help should not list hidden commands:\n%s", out)
	}
	if !strings.Contains(out, "explore <world>") {
		t.Fatalf("help should list usage strings:\n%s", out)
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	resp := d.Execute("skillz")
	if resp.Kind != model.KindError {
		t.Fatalf("expected error kind, got %s", resp.Kind)
	}
	if !strings.Contains(resp.Output, "Command not found: skillz") {
		t.Fatalf("missing not-found line: %s", resp.Output)
	}
	if !strings.Contains(resp.Output, "Did you mean: skills?") {
		t.Fatalf("missing suggestion: %s", resp.Output)
	}
	if !strings.Contains(resp.Output, "Type 'help'") {
		t.Fatalf("missing help hint: %s", resp.Output)
	}
}

func TestUnknownCommandWithoutSuggestions(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	resp := d.Execute("zzz")
	if strings.Contains(resp.Output, "Did you mean") {
		t.Fatalf("expected no suggestions: %s", resp.Output)
	}
}

func TestSuggestBothDirectionsCapped(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	// "e" is contained in many command names; the list is capped.
	got := d.Suggest("e")
	if len(got) != maxSuggestions {
		t.Fatalf("expected %d suggestions, got %v", maxSuggestions, got)
	}
	// Input containing the first three letters of a command.
	if diff := cmp.Diff([]string{"projects"}, d.Suggest("myprojectlist")); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if got := d.Suggest("   "); got != nil {
		t.Fatalf("expected no suggestions for blank input, got %v", got)
	}
}

func TestExploreValidatesWorld(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})

	resp := d.Execute("explore skills")
	if resp.Kind != model.KindSuccess || resp.Action != (Action{Type: ActionNavigate, Arg: "skills"}) {
		t.Fatalf("unexpected explore response: %+v", resp)
	}
	if resp := d.Execute("explore"); resp.Kind != model.KindError || resp.Action.Type != ActionNone {
		t.Fatalf("expected usage error, got %+v", resp)
	}
	if resp := d.Execute("explore moon"); resp.Kind != model.KindError || !strings.Contains(resp.Output, "Unknown world: moon") {
		t.Fatalf("expected unknown world error, got %+v", resp)
	}
}

func TestAskKeepsOriginalCase(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	resp := d.Execute("ask Do you know Go?")
	if resp.Action != (Action{Type: ActionAsk, Arg: "Do you know Go?"}) {
		t.Fatalf("unexpected action: %+v", resp.Action)
	}
	if resp := d.Execute("ask"); resp.Kind != model.KindError {
		t.Fatalf("expected usage error for empty question")
	}
}

func TestZoomCommand(t *testing.T) {
	current := model.Preferences{Theme: model.ThemeDark, Zoom: 200}
	d := NewDispatcher(testPortfolio(t), Env{Prefs: func() model.Preferences { return current }})

	if resp := d.Execute("zoom in"); resp.Action.Arg != "200" {
		t.Fatalf("expected zoom to stay at 200, got %+v", resp)
	}
	if resp := d.Execute("zoom out"); resp.Action.Arg != "175" {
		t.Fatalf("expected 175, got %+v", resp)
	}
	if resp := d.Execute("zoom 125%"); resp.Action.Arg != "125" {
		t.Fatalf("expected 125, got %+v", resp)
	}
	if resp := d.Execute("zoom 130"); resp.Kind != model.KindError {
		t.Fatalf("expected error for level outside list, got %+v", resp)
	}
	if resp := d.Execute("zoom reset"); resp.Action.Arg != "100" {
		t.Fatalf("expected reset to 100, got %+v", resp)
	}
}

func TestThemeAndSoundToggle(t *testing.T) {
	current := model.Preferences{Theme: model.ThemeDark, Zoom: 100, Sound: true}
	d := NewDispatcher(testPortfolio(t), Env{Prefs: func() model.Preferences { return current }})

	if resp := d.Execute("theme"); resp.Action != (Action{Type: ActionTheme, Arg: "light"}) {
		t.Fatalf("expected toggle to light, got %+v", resp.Action)
	}
	if resp := d.Execute("theme purple"); resp.Kind != model.KindError {
		t.Fatalf("expected error for unknown theme")
	}
	if resp := d.Execute("sound"); resp.Action != (Action{Type: ActionSound, Arg: "off"}) {
		t.Fatalf("expected toggle to off, got %+v", resp.Action)
	}
}

func TestDateUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	d := NewDispatcher(testPortfolio(t), Env{Now: func() time.Time { return fixed }})
	if out := d.Execute("date").Output; out != "Sat Mar 9 08:30:00 UTC 2024" {
		t.Fatalf("unexpected date output %q", out)
	}
}

func TestStatsRendersCounters(t *testing.T) {
	counters := model.Counters{Visits: 3, Commands: 12, Questions: 2, LastCommand: "skills"}
	d := NewDispatcher(testPortfolio(t), Env{Counters: func() model.Counters { return counters }})
	out := d.Execute("stats").Output
	for _, want := range []string{"Visits", "3", "Commands", "12", "skills"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestEmptyInputDoesNothing(t *testing.T) {
	d := NewDispatcher(testPortfolio(t), Env{})
	if resp := d.Execute("   "); resp != (Response{}) {
		t.Fatalf("expected zero response, got %+v", resp)
	}
}

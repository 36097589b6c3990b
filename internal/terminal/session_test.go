package terminal

import (
	"strings"
	"testing"

	"github.com/verte-zerg/termfolio/internal/model"
)

func TestSubmitHelpAppendsOneEntry(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	if _, appended := s.Submit("help"); !appended {
		t.Fatalf("expected entry to be appended")
	}
	entries := s.Output().Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Result, "PORTFOLIO COMMANDS") {
		t.Fatalf("expected help text, got %q", entries[0].Result)
	}
	if entries[0].ID == "" || entries[0].Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", entries[0])
	}
}

func TestSubmitUnknownIsError(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	s.Submit("frobnicate")
	entries := s.Output().Entries()
	if len(entries) != 1 || entries[0].Kind != model.KindError {
		t.Fatalf("expected one error entry, got %+v", entries)
	}
}

func TestSubmitClearEmptiesOutput(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	s.Submit("about")
	s.Submit("skills")
	if _, appended := s.Submit("clear"); appended {
		t.Fatalf("clear must not append")
	}
	if s.Output().Len() != 0 {
		t.Fatalf("expected empty output after clear, got %d", s.Output().Len())
	}
	if got := s.Recall().Items(); len(got) != 3 {
		t.Fatalf("clear should still be recallable, got %v", got)
	}
}

func TestSubmitIgnoresBlank(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	if _, appended := s.Submit("  "); appended {
		t.Fatalf("blank input must not append")
	}
	if len(s.Recall().Items()) != 0 {
		t.Fatalf("blank input must not be recorded")
	}
}

func TestHistoryCommandReadsRecall(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	s.Submit("about")
	resp, _ := s.Submit("history")
	if !strings.Contains(resp.Output, "1  about") || !strings.Contains(resp.Output, "2  history") {
		t.Fatalf("unexpected history output:\n%s", resp.Output)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	s := NewSession(testPortfolio(t), Env{}, nil)
	s.Submit("about")
	entries := s.Output().Entries()
	entries[0].Result = "mutated"
	if s.Output().Entries()[0].Result == "mutated" {
		t.Fatalf("entries must be returned as copies")
	}
}

package terminal

import (
	"strings"

	"github.com/verte-zerg/termfolio/internal/content"
)

// Session ties the dispatcher to its output history and recall list.
type Session struct {
	dispatcher *Dispatcher
	output     *Output
	recall     *Recall
}

// NewSession builds a session. When env.History is nil it reads from recall.
func NewSession(p *content.Portfolio, env Env, recall *Recall) *Session {
	if recall == nil {
		recall = NewRecall(DefaultRecallLimit, nil)
	}
	if env.History == nil {
		env.History = recall.Items
	}
	return &Session{
		dispatcher: NewDispatcher(p, env),
		output:     NewOutput(),
		recall:     recall,
	}
}

// Submit executes input, records it for recall and appends the result to the
// output. It reports whether an entry was appended; empty input and clear do
// not append.
func (s *Session) Submit(input string) (Response, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Response{}, false
	}
	s.recall.Push(trimmed)
	resp := s.dispatcher.Execute(trimmed)
	if resp.Action.Type == ActionClear {
		s.output.Clear()
		return resp, false
	}
	s.output.Append(trimmed, resp.Output, resp.Kind)
	return resp, true
}

// Dispatcher returns the session's dispatcher.
func (s *Session) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Output returns the session's output history.
func (s *Session) Output() *Output {
	return s.output
}

// Recall returns the session's recall list.
func (s *Session) Recall() *Recall {
	return s.recall
}

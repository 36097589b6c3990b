// Package shield implements PromptShield, the heuristic safety wrapper
// around the chat assistant.
package shield

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Action is what the shield decides to do with a message.
type Action string

const (
	ActionAllow    Action = "allow"
	ActionWarn     Action = "warn"
	ActionRedirect Action = "redirect"
	ActionBlock    Action = "block"
)

var severity = map[Action]int{
	ActionAllow:    0,
	ActionWarn:     1,
	ActionRedirect: 2,
	ActionBlock:    3,
}

// Rule is a regex-based check.
type Rule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
	Action   Action `yaml:"action"`
	Message  string `yaml:"message"`
}

// Messages are the canned replies shown instead of an assistant answer.
type Messages struct {
	Blocked  string `yaml:"blocked"`
	Redirect string `yaml:"redirect"`
	TooLong  string `yaml:"too_long"`
	Empty    string `yaml:"empty"`
	Filtered string `yaml:"filtered"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	MaxQuestionLength    int      `yaml:"max_question_length"`
	MinWordsForRelevance int      `yaml:"min_words_for_relevance"`
	Messages             Messages `yaml:"messages"`
	Topics               []string `yaml:"topics"`
	InputRules           []Rule   `yaml:"input_rules"`
	OutputRules          []Rule   `yaml:"output_rules"`
}

// Verdict is the outcome of an inspection.
type Verdict struct {
	Action  Action
	Reasons []string
	// Reply is the canned text to show when Action is redirect or block.
	Reply string
}

// Allowed reports whether the message may proceed.
func (v Verdict) Allowed() bool {
	return v.Action == ActionAllow || v.Action == ActionWarn
}

type compiledRule struct {
	re   *regexp.Regexp
	rule Rule
}

type ruleset struct {
	file   RulesFile
	input  []compiledRule
	output []compiledRule
	topics map[string]struct{}
}

// Shield evaluates questions and answers against a ruleset. It is safe for
// concurrent use; Reload swaps the ruleset atomically.
type Shield struct {
	mu    sync.RWMutex
	rules *ruleset
	extra []string
}

// New loads rules from path, falling back to the embedded defaults when the
// file is missing. extraTopics extend the relevance vocabulary.
func New(path string, extraTopics ...string) (*Shield, error) {
	s := &Shield{extra: extraTopics}
	if err := s.Reload(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns a shield built from the embedded rules.
func Default(extraTopics ...string) *Shield {
	rs, err := compile(defaultRules, extraTopics)
	if err != nil {
		panic(fmt.Sprintf("shield: invalid embedded rules: %v", err))
	}
	return &Shield{rules: rs, extra: extraTopics}
}

// Reload re-reads rules from path.
func (s *Shield) Reload(path string) error {
	data := defaultRules
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = raw
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("failed to read shield rules: %w", err)
		}
	}
	rs, err := compile(data, s.extra)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.rules = rs
	s.mu.Unlock()
	return nil
}

func compile(data []byte, extraTopics []string) (*ruleset, error) {
	var defaults RulesFile
	if err := yaml.Unmarshal(defaultRules, &defaults); err != nil {
		return nil, fmt.Errorf("failed to decode default shield rules: %w", err)
	}
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode shield rules: %w", err)
	}
	if file.MaxQuestionLength <= 0 {
		file.MaxQuestionLength = defaults.MaxQuestionLength
	}
	if file.MinWordsForRelevance <= 0 {
		file.MinWordsForRelevance = defaults.MinWordsForRelevance
	}
	fillMessages(&file.Messages, defaults.Messages)

	rs := &ruleset{file: file, topics: map[string]struct{}{}}
	var err error
	if rs.input, err = compileRules(file.InputRules); err != nil {
		return nil, err
	}
	if rs.output, err = compileRules(file.OutputRules); err != nil {
		return nil, err
	}
	for _, t := range append(append([]string(nil), file.Topics...), extraTopics...) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			rs.topics[t] = struct{}{}
		}
	}
	return rs, nil
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid shield pattern %q: %w", r.Pattern, err)
		}
		if _, ok := severity[r.Action]; !ok {
			r.Action = ActionBlock
		}
		out = append(out, compiledRule{re: re, rule: r})
	}
	return out, nil
}

func fillMessages(m *Messages, d Messages) {
	if m.Blocked == "" {
		m.Blocked = d.Blocked
	}
	if m.Redirect == "" {
		m.Redirect = d.Redirect
	}
	if m.TooLong == "" {
		m.TooLong = d.TooLong
	}
	if m.Empty == "" {
		m.Empty = d.Empty
	}
	if m.Filtered == "" {
		m.Filtered = d.Filtered
	}
}

func (s *Shield) current() *ruleset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// Inspect checks a visitor question before it reaches the provider.
func (s *Shield) Inspect(question string) Verdict {
	rs := s.current()
	q := strings.TrimSpace(question)
	if q == "" {
		return Verdict{Action: ActionBlock, Reasons: []string{"empty question"}, Reply: rs.file.Messages.Empty}
	}
	if utf8.RuneCountInString(q) > rs.file.MaxQuestionLength {
		return Verdict{Action: ActionBlock, Reasons: []string{"question too long"}, Reply: rs.file.Messages.TooLong}
	}

	v := evaluate(rs.input, q)
	if v.Action == ActionAllow && !rs.relevant(q) {
		v.Action = ActionRedirect
		v.Reasons = append(v.Reasons, "off-topic question")
	}
	switch v.Action {
	case ActionBlock:
		v.Reply = rs.file.Messages.Blocked
	case ActionRedirect:
		v.Reply = rs.file.Messages.Redirect
	}
	return v
}

// Filter checks an assistant answer before it is displayed.
func (s *Shield) Filter(answer string) Verdict {
	rs := s.current()
	v := evaluate(rs.output, answer)
	if !v.Allowed() {
		v.Action = ActionBlock
		v.Reply = rs.file.Messages.Filtered
	}
	return v
}

func evaluate(rules []compiledRule, text string) Verdict {
	v := Verdict{Action: ActionAllow}
	for _, r := range rules {
		if !r.re.MatchString(text) {
			continue
		}
		if severity[r.rule.Action] > severity[v.Action] {
			v.Action = r.rule.Action
		}
		v.Reasons = append(v.Reasons, r.rule.Message)
	}
	return v
}

// relevant applies the topic check to questions long enough to judge.
func (rs *ruleset) relevant(q string) bool {
	if len(rs.topics) == 0 {
		return true
	}
	words := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#')
	})
	if len(words) < rs.file.MinWordsForRelevance {
		return true
	}
	for _, w := range words {
		if _, ok := rs.topics[w]; ok {
			return true
		}
	}
	return false
}

// Package content loads the portfolio data shown by the terminal.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var defaultPortfolio []byte

// Link is a labeled URL.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// SkillGroup is a category of skills.
type SkillGroup struct {
	Category string   `yaml:"category"`
	Items    []string `yaml:"items"`
}

// Position is one entry of the experience timeline.
type Position struct {
	Role       string   `yaml:"role"`
	Company    string   `yaml:"company"`
	Period     string   `yaml:"period"`
	Highlights []string `yaml:"highlights"`
}

// Project is a showcased project.
type Project struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Stack       []string `yaml:"stack"`
	URL         string   `yaml:"url"`
}

// Client is a client engagement.
type Client struct {
	Name     string `yaml:"name"`
	Industry string `yaml:"industry"`
	Work     string `yaml:"work"`
}

// FAQ maps question keywords to a canned answer.
type FAQ struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

// Portfolio is the full content document.
type Portfolio struct {
	Name           string       `yaml:"name"`
	Title          string       `yaml:"title"`
	Location       string       `yaml:"location"`
	Email          string       `yaml:"email"`
	Website        string       `yaml:"website"`
	Links          []Link       `yaml:"links"`
	Summary        string       `yaml:"summary"`
	Skills         []SkillGroup `yaml:"skills"`
	Experience     []Position   `yaml:"experience"`
	Projects       []Project    `yaml:"projects"`
	Clients        []Client     `yaml:"clients"`
	FAQ            []FAQ        `yaml:"faq"`
	FallbackAnswer string       `yaml:"fallback_answer"`
}

// Default returns the embedded portfolio.
func Default() (*Portfolio, error) {
	return Parse(defaultPortfolio)
}

// Load reads a portfolio from path, or the embedded one when path is empty.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML portfolio document.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("content is missing a name")
	}
	return &p, nil
}

// SystemPrompt builds the assistant instructions from the portfolio.
func (p *Portfolio) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the assistant on %s's portfolio terminal. ", p.Name)
	fmt.Fprintf(&b, "%s is a %s based in %s. ", p.Name, p.Title, p.Location)
	b.WriteString("Answer briefly and only about their work, skills, projects and availability. ")
	b.WriteString("If a question is unrelated, steer the visitor back to the portfolio.\n\n")
	b.WriteString(p.Summary)
	b.WriteString("\n\nSkills: ")
	groups := make([]string, 0, len(p.Skills))
	for _, g := range p.Skills {
		groups = append(groups, fmt.Sprintf("%s (%s)", g.Category, strings.Join(g.Items, ", ")))
	}
	b.WriteString(strings.Join(groups, "; "))
	b.WriteString("\nExperience: ")
	jobs := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		jobs = append(jobs, fmt.Sprintf("%s at %s (%s)", e.Role, e.Company, e.Period))
	}
	b.WriteString(strings.Join(jobs, "; "))
	fmt.Fprintf(&b, "\nContact: %s", p.Email)
	return b.String()
}

// Answer returns the FAQ answer whose keywords best match question.
func (p *Portfolio) Answer(question string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	best, bestScore := "", 0
	for _, f := range p.FAQ {
		score := 0
		for _, k := range f.Keywords {
			if _, ok := seen[strings.ToLower(k)]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = f.Answer, score
		}
	}
	return best, bestScore > 0
}

// Topics returns lower-cased words that mark a question as portfolio related.
func (p *Portfolio) Topics() []string {
	set := map[string]struct{}{}
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			if len(w) > 2 {
				set[w] = struct{}{}
			}
		}
	}
	add(p.Name)
	for _, f := range p.FAQ {
		for _, k := range f.Keywords {
			add(k)
		}
	}
	for _, g := range p.Skills {
		for _, item := range g.Items {
			add(item)
		}
	}
	for _, e := range p.Experience {
		add(e.Company)
	}
	for _, pr := range p.Projects {
		add(pr.Name)
	}
	for _, c := range p.Clients {
		add(c.Name)
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

package content

import (
	"fmt"
	"strings"
)

// Worlds lists the explorable sections in navigation order.
var Worlds = []string{"experience", "skills", "projects", "clients"}

// IsWorld reports whether name is an explorable section.
func IsWorld(name string) bool {
	for _, w := range Worlds {
		if w == name {
			return true
		}
	}
	return false
}

// WorldMarkdown renders a world section as Markdown.
func (p *Portfolio) WorldMarkdown(name string) (string, error) {
	var b strings.Builder
	switch name {
	case "experience":
		b.WriteString("# Experience\n\n")
		for _, e := range p.Experience {
			fmt.Fprintf(&b, "## %s · %s\n\n*%s*\n\n", e.Role, e.Company, e.Period)
			for _, h := range e.Highlights {
				fmt.Fprintf(&b, "- %s\n", h)
			}
			b.WriteString("\n")
		}
	case "skills":
		b.WriteString("# Skills\n\n")
		for _, g := range p.Skills {
			fmt.Fprintf(&b, "## %s\n\n", g.Category)
			for _, item := range g.Items {
				fmt.Fprintf(&b, "- %s\n", item)
			}
			b.WriteString("\n")
		}
	case "projects":
		b.WriteString("# Projects\n\n")
		for _, pr := range p.Projects {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", pr.Name, pr.Description)
			if len(pr.Stack) > 0 {
				fmt.Fprintf(&b, "Stack: `%s`\n\n", strings.Join(pr.Stack, "` `"))
			}
			if pr.URL != "" {
				fmt.Fprintf(&b, "<%s>\n\n", pr.URL)
			}
		}
	case "clients":
		b.WriteString("# Clients\n\n")
		b.WriteString("| Client | Industry | Work |\n|---|---|---|\n")
		for _, c := range p.Clients {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Name, c.Industry, c.Work)
		}
	default:
		return "", fmt.Errorf("unknown world %q", name)
	}
	return b.String(), nil
}

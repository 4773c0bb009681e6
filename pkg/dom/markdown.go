package dom

import (
	"regexp"
	"strings"

	"github.com/aretw0/walkthrough/pkg/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n\s*`)

// Markdown renders the step body as Markdown for terminal hosts.
// Elements tagged other-platform are skipped, mirroring the page CSS that
// hides them.
func (d *Document) Markdown() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		writeMarkdown(&sb, c)
	}
	out := blankLines.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(out)
}

func writeMarkdown(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	if hasClass(n, domain.ClassOtherPlatform) {
		return
	}

	children := func() {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeMarkdown(sb, c)
		}
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		sb.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		children()
		sb.WriteString("\n\n")
	case atom.P, atom.Div, atom.Section, atom.Ul, atom.Ol:
		sb.WriteString("\n\n")
		children()
		sb.WriteString("\n\n")
	case atom.Li:
		sb.WriteString("\n- ")
		children()
	case atom.Br:
		sb.WriteString("  \n")
	case atom.Strong, atom.B:
		sb.WriteString("**")
		children()
		sb.WriteString("**")
	case atom.Em, atom.I:
		sb.WriteString("_")
		children()
		sb.WriteString("_")
	case atom.Code:
		sb.WriteString("`" + textOf(n) + "`")
	case atom.Pre:
		sb.WriteString("\n\n```\n" + strings.Trim(textOf(n), "\n") + "\n```\n\n")
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			children()
			return
		}
		sb.WriteString("[")
		children()
		sb.WriteString("](" + href + ")")
	case atom.Script, atom.Style:
	default:
		children()
	}
}

func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if s[0] == ' ' || s[0] == '\n' || s[0] == '\t' {
		out = " " + out
	}
	last := s[len(s)-1]
	if last == ' ' || last == '\n' || last == '\t' {
		out += " "
	}
	return out
}

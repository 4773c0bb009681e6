package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/walkthrough/pkg/domain"
	stepgraph "github.com/aretw0/walkthrough/pkg/graph"
)

// GraphOverlay contains navigation state to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid produces a Mermaid flowchart of the workflow.
// Shapes:
// - start step: ((Circle))
// - step with a contentFile: [[Subroutine]]
// - external link: >Flag]
// - default: [Rectangle]
// Actions pointing at missing steps end in a node styled "missing".
func GenerateMermaid(g *stepgraph.StepGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	missing := make(map[string]bool)
	links := 0

	for _, step := range g.Steps() {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch {
		case step.ID == g.StartStep():
			opener, closer = "((", "))"
		case step.HasFragment():
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(step.Title), closer)

		for _, a := range step.Actions {
			label := escapeLabel(a.Label)
			switch {
			case a.IsExternalLink():
				links++
				linkID := fmt.Sprintf("link_%d", links)
				fmt.Fprintf(&sb, "    %s>\"%s ↗\"]\n", linkID, escapeLabel(a.URL))
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, label, linkID)
			case a.NextStep != "":
				if !g.Has(a.NextStep) {
					missing[a.NextStep] = true
				}
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(a.NextStep))
			}
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range sortedKeys(missing) {
			fmt.Fprintf(&sb, "    class %s missing;\n", sanitizeMermaidID(id))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" && g.Has(id) {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

// OverlayFromState builds an overlay from a navigation snapshot.
func OverlayFromState(state domain.NavigationState) *GraphOverlay {
	return &GraphOverlay{
		VisitedSteps: state.History,
		CurrentStep:  state.CurrentStepID,
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

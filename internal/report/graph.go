// Package report renders read-only consumers of the results store: the HTML
// case report and the causal graph visualization. It never mutates stage
// results.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// Link is one parsed causal relationship.
type Link struct {
	Cause  string
	Effect string
}

// arrowPattern matches "X -> Y" and "X → Y" causal link lines in generated text.
var arrowPattern = regexp.MustCompile(`([^→\n]+?)(?:→|->)([^→\n]+)`)

// ParseCausalLinks extracts cause/effect pairs from causal analysis text.
// Lines without an arrow are ignored; this is formatting, not understanding.
func ParseCausalLinks(text string) []Link {
	var links []Link
	for _, match := range arrowPattern.FindAllStringSubmatch(text, -1) {
		cause := strings.TrimSpace(match[1])
		effect := strings.TrimSpace(match[2])
		if cause != "" && effect != "" {
			links = append(links, Link{Cause: cause, Effect: effect})
		}
	}
	return links
}

// Node classification keyword sets, keyed by node type.
var nodeTypeKeywords = map[string][]string{
	"symptom":    {"pain", "fever", "nausea", "vomiting", "bleeding", "cough", "headache"},
	"condition":  {"disease", "syndrome", "disorder", "infection", "failure", "cancer"},
	"diagnostic": {"test", "scan", "x-ray", "mri", "ct", "ultrasound", "biopsy"},
	"treatment":  {"medication", "drug", "therapy", "treatment", "surgery"},
}

var nodeTypeColors = map[string]string{
	"symptom":    "#FF6B6B",
	"condition":  "#4ECDC4",
	"diagnostic": "#FFD166",
	"treatment":  "#6A0572",
	"other":      "#C7F9CC",
}

// nodeType classifies a node by keyword heuristic.
func nodeType(text string) string {
	lower := strings.ToLower(text)
	for _, typ := range []string{"symptom", "condition", "diagnostic", "treatment"} {
		for _, kw := range nodeTypeKeywords[typ] {
			if strings.Contains(lower, kw) {
				return typ
			}
		}
	}
	return "other"
}

type graphNode struct {
	ID    int
	Label string
	Color string
}

type graphEdge struct {
	From int
	To   int
}

var graphTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Causal Relationships</title>
    <script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
    <style>
        #graph { width: 100%; height: 600px; border: 1px solid #ddd; }
        .legend span { display: inline-block; margin-right: 16px; }
        .swatch { display: inline-block; width: 12px; height: 12px; margin-right: 4px; }
    </style>
</head>
<body>
    <h2>Causal Relationships</h2>
    <div id="graph"></div>
    <div class="legend">
        <span><i class="swatch" style="background:#FF6B6B"></i>Symptom</span>
        <span><i class="swatch" style="background:#4ECDC4"></i>Condition</span>
        <span><i class="swatch" style="background:#FFD166"></i>Diagnostic</span>
        <span><i class="swatch" style="background:#6A0572"></i>Treatment</span>
        <span><i class="swatch" style="background:#C7F9CC"></i>Other</span>
    </div>
    <script>
        var nodes = new vis.DataSet([
        {{- range .Nodes }}
            { id: {{ .ID }}, label: {{ .Label }}, color: {{ .Color }} },
        {{- end }}
        ]);
        var edges = new vis.DataSet([
        {{- range .Edges }}
            { from: {{ .From }}, to: {{ .To }}, arrows: "to" },
        {{- end }}
        ]);
        var container = document.getElementById("graph");
        new vis.Network(container, { nodes: nodes, edges: edges }, {
            physics: { stabilization: true },
            edges: { color: "#3498DB" }
        });
    </script>
</body>
</html>
`))

// RenderCausalGraph parses causal-link text and renders a self-contained HTML
// graph. It fails when no links can be parsed out of the text.
func RenderCausalGraph(causalLinks string) (string, error) {
	links := ParseCausalLinks(causalLinks)
	if len(links) == 0 {
		return "", fmt.Errorf("no causal links found in analysis text")
	}

	nodeIDs := make(map[string]int)
	var nodes []graphNode
	var edges []graphEdge

	idFor := func(label string) int {
		if id, ok := nodeIDs[label]; ok {
			return id
		}
		id := len(nodes) + 1
		nodeIDs[label] = id
		nodes = append(nodes, graphNode{ID: id, Label: label, Color: nodeTypeColors[nodeType(label)]})
		return id
	}

	for _, link := range links {
		edges = append(edges, graphEdge{From: idFor(link.Cause), To: idFor(link.Effect)})
	}

	var buf bytes.Buffer
	if err := graphTemplate.Execute(&buf, struct {
		Nodes []graphNode
		Edges []graphEdge
	}{nodes, edges}); err != nil {
		return "", fmt.Errorf("failed to render causal graph: %w", err)
	}
	return buf.String(), nil
}

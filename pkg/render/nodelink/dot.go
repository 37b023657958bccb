package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kinship/pkg/category"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/render/echarts"
)

// Options configures node-link diagram rendering.
type Options struct {
	// ShowLabels writes the workflow name inside each node, one "_"-separated
	// segment per line. When false nodes are drawn empty.
	ShowLabels bool
	// Localizer translates legend entries and tooltips. Nil means English.
	Localizer i18n.Localizer
	// NoLegend omits the legend cluster.
	NoLegend bool
}

// ToDOT converts a lineage graph to Graphviz DOT source.
func ToDOT(g lineage.Graph, focus category.Focus, opts Options) string {
	loc := opts.Localizer
	if loc == nil {
		loc = i18n.Default()
	}
	text := i18n.Resolve(loc)

	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=12, width=1, height=1, margin=\"0.1,0.05\"];\n")
	fmt.Fprintf(&buf, "  edge [dir=both, arrowtail=dot, arrowhead=normal, color=%q];\n", echarts.LineColor)
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		c := category.Classify(n, focus)
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, opts.ShowLabels)),
			fmt.Sprintf("fillcolor=%q", c.Color()),
		}
		if tip := tooltip(n, text); tip != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", tip))
		}
		if focus.Matches(n.ID) {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	if !opts.NoLegend {
		writeLegend(&buf, text, legendPrefix(g))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n lineage.Node, show bool) string {
	if !show {
		return ""
	}
	return strings.Join(echarts.LabelSegments(n.Name), "\n")
}

// tooltip mirrors the interactive tooltip as plain text.
func tooltip(n lineage.Node, text i18n.Map) string {
	if n.Name == "" {
		return ""
	}
	rows := [][2]string{
		{i18n.KeyWorkflowName, n.Name},
		{i18n.KeyScheduleStartTime, n.ScheduleStartTime},
		{i18n.KeyScheduleEndTime, n.ScheduleEndTime},
		{i18n.KeyCrontab, n.Crontab},
		{i18n.KeyWorkflowPublishStatus, string(n.WorkFlowPublishStatus)},
		{i18n.KeySchedulePublishStatus, string(n.SchedulePublishStatus)},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = text.Text(r[0]) + ": " + r[1]
	}
	return strings.Join(lines, "\n")
}

func writeLegend(buf *bytes.Buffer, text i18n.Map, prefix string) {
	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    style=invis;\n")
	buf.WriteString("    node [shape=box, style=\"rounded,filled\", width=0, height=0, fontsize=10];\n")
	for _, c := range category.LegendOrder {
		fmt.Fprintf(buf, "    %q [label=%q, fillcolor=%q];\n", prefix+c.String(), c.Label(text), c.Color())
	}
	ids := make([]string, len(category.LegendOrder))
	for i, c := range category.LegendOrder {
		ids[i] = strconv.Quote(prefix + c.String())
	}
	fmt.Fprintf(buf, "    %s [style=invis, dir=none];\n", strings.Join(ids, " -> "))
	buf.WriteString("  }\n")
}

// legendPrefix returns a node id prefix that no workflow in g starts with,
// so legend entries never merge with workflow nodes.
func legendPrefix(g lineage.Graph) string {
	prefix := "legend:"
	for clashes(g, prefix) {
		prefix = "_" + prefix
	}
	return prefix
}

func clashes(g lineage.Graph, prefix string) bool {
	for _, n := range g.Nodes {
		if strings.HasPrefix(n.ID, prefix) {
			return true
		}
	}
	for _, e := range g.Edges {
		if strings.HasPrefix(e.Source, prefix) || strings.HasPrefix(e.Target, prefix) {
			return true
		}
	}
	return false
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose viewBox
// starts at the origin and whose size matches it, so the SVG scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

package echarts

import (
	"html"
	"strings"

	"github.com/matzehuels/kinship/pkg/category"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
)

// Build assembles the renderer configuration for a lineage graph.
//
// Every node is classified against focus and decorated with its category
// label and emphasis color. The legend always lists all four categories in
// [category.LegendOrder]; the palette follows [category.PaletteOrder]. When
// showLabels is false the label is hidden and its formatter returns "".
//
// A nil loc uses [i18n.Default]. Build never fails: empty inputs yield an
// option with empty data and links and a complete legend.
func Build(nodes []lineage.Node, edges []lineage.Edge, focus category.Focus, showLabels bool, loc i18n.Localizer) Option {
	if loc == nil {
		loc = i18n.Default()
	}
	text := i18n.Resolve(loc)

	data := make([]DataItem, len(nodes))
	for i, n := range nodes {
		c := category.Classify(n, focus)
		data[i] = DataItem{
			Node:     n,
			Category: c.Label(text),
			Emphasis: Emphasis{ItemStyle: ItemStyle{Color: c.Color()}},
		}
	}

	links := make([]lineage.Edge, len(edges))
	copy(links, edges)

	legend := make([]LegendItem, len(category.LegendOrder))
	cats := make([]SeriesCategory, len(category.LegendOrder))
	for i, c := range category.LegendOrder {
		legend[i] = LegendItem{Name: c.Label(text)}
		cats[i] = SeriesCategory{Name: c.Label(text), ItemStyle: ItemStyle{Color: c.Color()}}
	}

	palette := make([]string, len(category.PaletteOrder))
	for i, c := range category.PaletteOrder {
		palette[i] = c.Color()
	}

	return Option{
		Tooltip: Tooltip{
			Trigger:         "item",
			TriggerOn:       "mousemove",
			BackgroundColor: TooltipBackground,
			Padding:         []int{8, 12},
			Color:           TooltipBackground,
			TextStyle:       richText(TooltipBackground),
			Formatter:       tooltipFormatter(text),
		},
		Color: palette,
		Legend: []Legend{{
			Orient: "horizontal",
			Top:    6,
			Left:   6,
			Data:   legend,
		}},
		Series: []Series{{
			Type:           SeriesType,
			Layout:         LayoutForce,
			NodeScaleRatio: NodeScaleRatio,
			Draggable:      true,
			Animation:      false,
			Roam:           true,
			Symbol:         Symbol,
			SymbolSize:     SymbolSize,
			Data:           data,
			Categories:     cats,
			Label: Label{
				Show:      showLabels,
				Position:  "inside",
				Color:     LabelColor,
				TextStyle: richText(LabelColor),
				Formatter: labelFormatter(showLabels),
			},
			EdgeSymbol:     []string{EdgeSymbolStart, EdgeSymbolEnd},
			EdgeSymbolSize: []int{EdgeSymbolStartSize, EdgeSymbolEndSize},
			Force:          Force{Repulsion: Repulsion, EdgeLength: EdgeLength},
			Links:          links,
			LineStyle:      LineStyle{Color: LineColor},
		}},
	}
}

// BuildGraph is Build over a whole graph.
func BuildGraph(g lineage.Graph, focus category.Focus, showLabels bool, loc i18n.Localizer) Option {
	return Build(g.Nodes, g.Edges, focus, showLabels, loc)
}

func richText(color string) TextStyle {
	return TextStyle{Rich: map[string]RichStyle{
		richKey: {
			FontSize:   12,
			Color:      color,
			LineHeight: 12,
			Align:      "left",
			Padding:    []int{4, 4, 4, 4},
		},
	}}
}

// tooltipFormatter captures a snapshot of captions; it must not hold the Localizer.
func tooltipFormatter(text i18n.Map) TooltipFormatter {
	captions := [...]string{
		text.Text(i18n.KeyWorkflowName),
		text.Text(i18n.KeyScheduleStartTime),
		text.Text(i18n.KeyScheduleEndTime),
		text.Text(i18n.KeyCrontab),
		text.Text(i18n.KeyWorkflowPublishStatus),
		text.Text(i18n.KeySchedulePublishStatus),
	}
	return func(item DataItem) string {
		if item.Name == "" {
			return ""
		}
		values := [...]string{
			item.Name,
			item.ScheduleStartTime,
			item.ScheduleEndTime,
			item.Crontab,
			string(item.WorkFlowPublishStatus),
			string(item.SchedulePublishStatus),
		}
		var b strings.Builder
		for i, caption := range captions {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(html.EscapeString(caption))
			b.WriteString(": ")
			b.WriteString(html.EscapeString(values[i]))
			b.WriteString("<br/>")
		}
		return b.String()
	}
}

func labelFormatter(show bool) LabelFormatter {
	return func(item DataItem) string {
		if !show || item.Name == "" {
			return ""
		}
		var b strings.Builder
		for _, seg := range LabelSegments(item.Name) {
			b.WriteString("{" + richKey + "|")
			b.WriteString(seg)
			b.WriteString("\n}")
		}
		return b.String()
	}
}

// LabelSegments splits a workflow name into the lines shown inside a node.
func LabelSegments(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, "_")
}

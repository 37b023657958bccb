// Package nodelink exports lineage graphs as static Graphviz diagrams.
//
// The interactive renderer configuration from [echarts] needs a browser; this
// package produces the same picture as a file. Nodes are rounded boxes filled
// with their category color, edges carry a dot at the source and an arrow at
// the target, and a legend cluster lists the four categories:
//
//	dot := nodelink.ToDOT(g, category.FocusOn("42"), nodelink.Options{ShowLabels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source is deterministic for a given graph, focus and options, so it
// can be cached and re-rendered later.
//
// [echarts]: github.com/matzehuels/kinship/pkg/render/echarts
package nodelink

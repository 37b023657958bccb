// Package render groups the lineage renderers.
//
//   - [echarts] builds the interactive force-directed graph configuration
//     consumed by the web front end.
//   - [nodelink] exports the same graph as Graphviz DOT and SVG.
//
// Both classify nodes with [category.Classify] and draw the same colors, so a
// static export matches what users see in the browser.
//
// [echarts]: github.com/matzehuels/kinship/pkg/render/echarts
// [nodelink]: github.com/matzehuels/kinship/pkg/render/nodelink
// [category.Classify]: github.com/matzehuels/kinship/pkg/category#Classify
package render
